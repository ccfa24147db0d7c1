package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

// Form field helpers. Absent or unparsable values fall back to the default,
// matching the original form contract (background=true, conversation=true,
// n_predict=128, temperature=0.7).

func formBool(r *http.Request, key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(r.PostFormValue(key)))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func formInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func formFloat(r *http.Request, key string, def float64) float64 {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
