package steps

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Render executes text as a template against data.
// Unknown keys are errors so typos in pipeline files fail loudly.
func Render(text string, data map[string]any) (string, error) {
	tmpl, err := template.New("").Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", text, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", text, err)
	}
	return buf.String(), nil
}

// RenderAll renders each element of texts.
func RenderAll(texts []string, data map[string]any) ([]string, error) {
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		s, err := Render(text, data)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// RenderMap renders each key and value of m.
func RenderMap(m map[string]string, data map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		key, err := Render(k, data)
		if err != nil {
			return nil, fmt.Errorf("env key %s: %w", k, err)
		}
		s, err := Render(v, data)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", key, err)
		}
		out[key] = s
	}
	return out, nil
}
