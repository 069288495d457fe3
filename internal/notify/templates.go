package notify

import (
	htmltemplate "html/template"
	"text/template"
)

const crlf = "\r\n"

var ownerText = template.Must(template.New("owner").Parse(
	"Howdy," + crlf + crlf +
		"You just received a new user feedback regarding your website!" + crlf + crlf +
		"Name: {{.Name}}" + crlf +
		"Email: {{.Email}}" + crlf +
		"Browser: {{.BrowserName}} ({{.UserAgent}})" + crlf +
		"Visited URL: {{.URL}}" + crlf +
		"Site Language: {{.Language}}" + crlf +
		"Additional Notes:" + crlf +
		"{{.Message}}" + crlf + crlf +
		"{{if .Screenshot}}A screenshot of the visited page is attached." + crlf + "{{end}}",
))

var submitterText = template.Must(template.New("submitter").Parse(
	"Howdy," + crlf + crlf +
		"We just received the following feedback from you and will get in touch shortly. Thank you." + crlf + crlf +
		"Name: {{.Name}}" + crlf +
		"Email: {{.Email}}" + crlf +
		"Browser: {{.BrowserName}}" + crlf +
		"Visited URL: {{.URL}}" + crlf +
		"Additional Notes:" + crlf +
		"{{.Message}}" + crlf + crlf +
		"{{if .Screenshot}}A screenshot of the visited page is attached." + crlf + "{{end}}",
))

var ownerHTML = htmltemplate.Must(htmltemplate.New("owner").Parse(`<p>Howdy,</p>
<p>You just received a new user feedback regarding your website!</p>
<ul>
<li>Name: {{.Name}}</li>
<li>Email: {{.Email}}</li>
<li>Browser: {{.BrowserName}} ({{.UserAgent}})</li>
<li>Visited URL: {{.URL}}</li>
<li>Site Language: {{.Language}}</li>
</ul>
<p>Additional Notes:</p>
<pre>{{.Message}}</pre>
{{if .Screenshot}}<p>A screenshot of the visited page is attached.</p>
{{end}}`))

var submitterHTML = htmltemplate.Must(htmltemplate.New("submitter").Parse(`<p>Howdy,</p>
<p>We just received the following feedback from you and will get in touch shortly. Thank you.</p>
<ul>
<li>Name: {{.Name}}</li>
<li>Email: {{.Email}}</li>
<li>Browser: {{.BrowserName}}</li>
<li>Visited URL: {{.URL}}</li>
</ul>
<p>Additional Notes:</p>
<pre>{{.Message}}</pre>
{{if .Screenshot}}<p>A screenshot of the visited page is attached.</p>
{{end}}`))
