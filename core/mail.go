package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"log"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/trezcool/college/fs"
)

const emailTemplatesDir = "assets/templates/email"

var (
	mailTemplates   map[string]*mailTemplate
	mailTmplOnce    sync.Once
	frontendBaseURL string
	strictTemplates bool
	mailLogger      Logger
)

// mailTemplate holds both renditions of an email; either may be missing.
type mailTemplate struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		// Category tags the message at the provider, eg: "notification".
		Category string
		// Body is sent as is when no template is set.
		Body string

		TemplateName string // without ext
		TemplateData interface{}

		TextContent string
		HTMLContent string
	}

	// TemplateContext is what email templates are executed with.
	TemplateContext struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages in the background.
		SendMessages(messages ...*EmailMessage)
	}
)

// Render fills TextContent & HTMLContent from Body or the named template.
func (m *EmailMessage) Render() error {
	if m.TemplateName == "" {
		m.TextContent = m.Body
		return nil
	}

	mailTmplOnce.Do(parseEmailTemplates) // no-op if ParseEmailTemplates already ran
	tmpl, ok := mailTemplates[m.TemplateName]
	if !ok {
		return errors.Errorf("unknown email template %q", m.TemplateName)
	}

	data := TemplateContext{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}
	var buf bytes.Buffer
	if tmpl.text != nil {
		if err := tmpl.text.Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = buf.String()
		buf.Reset()
	}
	if tmpl.html != nil {
		if err := tmpl.html.Execute(&buf, data); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

// Sendable reports whether the message has someone to go to and something to say.
func (m *EmailMessage) Sendable() bool {
	return len(m.To) > 0 && (m.TextContent != "" || m.HTMLContent != "")
}

// ParseEmailTemplates parses the embedded email templates once.
func ParseEmailTemplates(conf *Config, logger Logger) {
	frontendBaseURL = conf.FrontendBaseURL
	strictTemplates = conf.Debug || conf.TestMode
	mailLogger = logger
	mailTmplOnce.Do(parseEmailTemplates)
}

func logTemplateErr(err error) {
	err = fmt.Errorf("core.parseEmailTemplates: %v", err)
	if mailLogger != nil {
		mailLogger.Error(err.Error(), err)
		return
	}
	log.Print(err)
}

func parseEmailTemplates() {
	mailTemplates = make(map[string]*mailTemplate)

	fps, err := fs.Glob(appfs.FS, path.Join(emailTemplatesDir, "*"))
	if err != nil {
		logTemplateErr(err)
		return
	}

	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		tmpl, ok := mailTemplates[name]
		if !ok {
			tmpl = new(mailTemplate)
		}

		switch ext {
		case ".txt":
			t, err := texttmpl.ParseFS(appfs.FS, path.Join(emailTemplatesDir, "_base.txt"), fp)
			if err != nil {
				logTemplateErr(err)
				continue
			}
			if strictTemplates {
				t = t.Option("missingkey=error")
			}
			tmpl.text = t
		case ".gohtml":
			t, err := htmltmpl.ParseFS(appfs.FS, path.Join(emailTemplatesDir, "_base.gohtml"), fp)
			if err != nil {
				logTemplateErr(err)
				continue
			}
			if strictTemplates {
				t = t.Option("missingkey=error")
			}
			tmpl.html = t
		default:
			continue
		}
		mailTemplates[name] = tmpl
	}
}
