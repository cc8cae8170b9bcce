package relay

import "fmt"

// ConfigError reports a required setting that was missing or empty at the
// point it was needed. Settings are deliberately not validated at startup;
// the request that first needs one surfaces the problem.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("required setting %s is missing or empty", e.Setting)
}
