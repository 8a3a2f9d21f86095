package bundle

import (
	"fmt"
	"regexp"

	"github.com/dop251/goja"
)

var (
	apiLiteralPattern = regexp.MustCompile(`api:(\{[^{}]*appId:[^{}]*\})`)
	appIDShapePattern = regexp.MustCompile(`^\d{9}$`)
)

// appIDFromConfigLiteral recovers the app id by evaluating the production
// api config object as a JS expression. Used when the strict pattern misses,
// which happens when a player release reorders the config keys.
func appIDFromConfigLiteral(body string) (string, error) {
	m := apiLiteralPattern.FindStringSubmatch(body)
	if len(m) < 2 {
		return "", fmt.Errorf("app id not found in bundle")
	}

	vm := goja.New()
	value, err := vm.RunString("(" + m[1] + ").appId")
	if err != nil {
		return "", fmt.Errorf("evaluate api config literal: %w", err)
	}
	appID := value.String()
	if !appIDShapePattern.MatchString(appID) {
		return "", fmt.Errorf("unexpected app id shape: %q", appID)
	}
	return appID, nil
}
