package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

// providerChoiceTemplate is the fallback page shown when an address's
// domain doesn't identify its provider and the user must pick one.
var providerChoiceTemplate = template.Must(template.New("provider_choice").Parse(`<!DOCTYPE html>
<html style="font-family:system-ui;text-align:center;padding:40px;">
  <head><title>Connect Inbox</title></head>
  <body>
    <div style="max-width:500px;margin:0 auto;border:1px solid #ddd;padding:30px;border-radius:12px;">
      <h2>Connect Inbox</h2>
      <p style="font-size:16px;color:#555;">
        We need to connect <b>{{.Address}}</b>.<br/>
        Which provider hosts this email?
      </p>
      <div style="display:grid;gap:12px;margin-top:24px;">
        <a href="{{.GoogleStartURL}}" style="display:block;padding:12px;text-decoration:none;color:#333;border:1px solid #ccc;border-radius:8px;font-weight:600;">
          Google Workspace (Gmail)
        </a>
        <a href="{{.MicrosoftStartURL}}" style="display:block;padding:12px;text-decoration:none;color:#333;border:1px solid #ccc;border-radius:8px;font-weight:600;">
          Microsoft 365 (Outlook)
        </a>
      </div>
    </div>
  </body>
</html>
`))

type providerChoiceData struct {
	Address           string
	GoogleStartURL    string
	MicrosoftStartURL string
}

func (s *Server) renderProviderChoice(w http.ResponseWriter, address, query string) {
	data := providerChoiceData{
		Address:           address,
		GoogleStartURL:    RouteGoogleStart + "?" + query,
		MicrosoftStartURL: RouteMicrosoftStart + "?" + query,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := providerChoiceTemplate.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render provider choice page")
	}
}
