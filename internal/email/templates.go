package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const subjectLeadLeftFunnelFmt = "Lead %s submitted to attorney"

// layout is the shared frame every message template fills with "content".
var layout = template.Must(template.ParseFS(templateFS, "templates/base.html"))

type frame struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type leftFunnelView struct {
	frame
	LeadID    string
	ActorName string
	LeftAt    string
}

// render clones the layout, adds the named content template and executes it.
func render(name string, view any) (string, error) {
	tmpl, err := layout.Clone()
	if err != nil {
		return "", fmt.Errorf("clone email layout: %w", err)
	}
	if _, err := tmpl.ParseFS(templateFS, "templates/"+name); err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", view); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderLeftFunnel(notice LeftFunnelNotice) (string, error) {
	view := leftFunnelView{
		frame: frame{
			Title:   "Lead submitted to attorney",
			Heading: "Lead submitted to attorney",
		},
		LeadID:    notice.LeadID,
		ActorName: notice.ActorName,
		LeftAt:    notice.LeftAt.UTC().Format(time.RFC1123),
	}
	if notice.LeadURL != "" {
		view.CTALabel = "Open lead"
		view.CTAURL = notice.LeadURL
	}
	return render("lead_left_funnel.html", view)
}
