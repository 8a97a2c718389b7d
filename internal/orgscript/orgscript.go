// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orgscript holds the org-side steps that produce the converter's
// input: a SOQL query over KnowledgeArticleVersion and an anonymous Apex
// script that serializes the same rows to a flat JSON array. Neither is run
// by this tool.
package orgscript

import (
	_ "embed"
	"strings"
)

//go:embed scripts/knowledge.soql
var query string

//go:embed scripts/export.apex
var apex string

// Query returns the SOQL query text.
func Query() string {
	return strings.TrimSpace(query)
}

// Apex returns the anonymous Apex export script.
func Apex() string {
	return strings.TrimSpace(apex)
}

// QueryFields returns the field list selected by the SOQL query, in order.
func QueryFields() []string {
	q := Query()
	start := strings.Index(q, "SELECT")
	end := strings.Index(q, "FROM")
	if start < 0 || end < start {
		return nil
	}

	var fields []string
	for _, f := range strings.Split(q[start+len("SELECT"):end], ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
