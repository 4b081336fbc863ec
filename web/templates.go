package web

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/workhive/desk/domain"
	"github.com/workhive/desk/internal/eventbus"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFiles = []string{
	"home",
	"login",
	"register",
	"role",
	"verify",
	"forgot_password",
	"reset_password",
	"dashboard",
	"loading",
}

// pageData is the single model every template renders from.
type pageData struct {
	Title        string
	Session      domain.Session
	Flashes      []eventbus.Notification
	Online       bool
	GoogleClient string
	Values       map[string]string
	Errors       fieldErrors
	CountryCodes []domain.CountryCode
	ResetToken   string
}

func parseTemplates() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		pages[name] = template.Must(template.ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return pages
}

func (h *Handler) render(ctx *fasthttp.RequestCtx, page string, data pageData) {
	tmpl, ok := h.pages[page]
	if !ok {
		h.logger.Error("unknown page template", zap.String("page", page))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	if data.Values == nil {
		data.Values = map[string]string{}
	}
	if data.Errors == nil {
		data.Errors = fieldErrors{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("template execution failed", zap.String("page", page), zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}
