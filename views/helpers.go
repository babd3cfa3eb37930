// Package views holds the server-rendered pages. The *.templ files are the
// sources; run `templ generate` after editing them.
package views

import (
	"net/url"

	"github.com/ManuelReschke/saasbase/internal/pkg/viewmodel"
)

var providerLabels = map[string]string{
	"google":  "Google",
	"github":  "GitHub",
	"discord": "Discord",
}

func pageTitle(title string) string {
	if title == "" {
		return "saasbase"
	}
	return title + " | saasbase"
}

func providerLabel(provider string) string {
	if label := providerLabels[provider]; label != "" {
		return label
	}
	return provider
}

// providerHref starts the provider flow and forwards next.
func providerHref(provider, next string) string {
	href := "/auth/" + url.PathEscape(provider)
	if next != "" {
		href += "?next=" + url.QueryEscape(next)
	}
	return href
}

func flashText(msg map[string]interface{}) string {
	text, _ := msg["message"].(string)
	return text
}

func flashClass(msg map[string]interface{}) string {
	kind, _ := msg["type"].(string)
	if kind == "" {
		kind = "info"
	}
	return "flash flash-" + kind
}

func planLabel(vm viewmodel.Dashboard) string {
	if !vm.IsPaid {
		return "No active subscription"
	}
	return vm.Plan
}
