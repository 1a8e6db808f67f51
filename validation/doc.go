// Package validation provides struct and programmatic validation for
// configuration, mapping files and HTTP requests.
//
// # Struct Tag Validation
//
//	type Limits struct {
//	    Timeout time.Duration `validate:"gte=0"`
//	}
//	err := validation.Validate(limits)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("rules[0].target", rule.Target)
//	err := v.Validate()
package validation
