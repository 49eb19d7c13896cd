package server

import (
	"html/template"
	"net/http"

	"github.com/flyagile/miro-mcp-server/security"
)

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
        }
        .container {
            background: white;
            padding: 3rem;
            border-radius: 12px;
            box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
            text-align: center;
            max-width: 500px;
        }
        h1 { color: #2d3748; margin-bottom: 1rem; }
        p { color: #4a5568; line-height: 1.6; }
        .success { color: #48bb78; font-size: 3rem; margin-bottom: 1rem; }
    </style>
</head>
<body>
    <div class="container">
        <div class="success">&#10003;</div>
        <h1>Authorization Successful!</h1>
        <p>Your Miro account has been connected.</p>
        <p>You can now close this window and return to your assistant.</p>
    </div>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Authorization Failed</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%);
        }
        .container {
            background: white;
            padding: 3rem;
            border-radius: 12px;
            box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
            text-align: center;
            max-width: 500px;
        }
        h1 { color: #2d3748; margin-bottom: 1rem; }
        p { color: #4a5568; line-height: 1.6; }
        .error { color: #f56565; font-size: 3rem; margin-bottom: 1rem; }
    </style>
</head>
<body>
    <div class="container">
        <div class="error">&#10007;</div>
        <h1>Authorization Failed</h1>
        <p>{{.Message}}</p>
        <p>Please try again or contact support.</p>
    </div>
</body>
</html>
`))

func (s *Server) renderSuccessPage(w http.ResponseWriter) {
	security.SetHTMLHeaders(w, "")
	w.WriteHeader(http.StatusOK)
	if err := successPage.Execute(w, nil); err != nil {
		s.logger.Error("Failed to render success page", "error", err)
	}
}

// renderErrorPage serves a generic failure page. The message is operator
// prose, never an error chain, so internals stay out of browsers.
func (s *Server) renderErrorPage(w http.ResponseWriter, message string) {
	security.SetHTMLHeaders(w, "")
	w.WriteHeader(http.StatusInternalServerError)
	if err := errorPage.Execute(w, struct{ Message string }{Message: message}); err != nil {
		s.logger.Error("Failed to render error page", "error", err)
	}
}
