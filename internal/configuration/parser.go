package configuration

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix environment-variable overrides are matched
// against: a field path v.HTTP.Port becomes ESTUARY_HTTP_PORT, following
// the registry's PREFIX_ABC_XYZ convention.
const EnvPrefix = "ESTUARY"

// Parse reads YAML configuration from in, applies environment overrides,
// and validates the result.
func Parse(in []byte) (*Configuration, error) {
	c := Default()
	if len(in) > 0 {
		if err := yaml.Unmarshal(in, c); err != nil {
			return nil, fmt.Errorf("configuration: %w", err)
		}
	}

	env := environ()
	if err := overwriteFields(reflect.ValueOf(c), EnvPrefix, env); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			env[parts[0]] = parts[1]
		}
	}
	return env
}

// overwriteFields walks v's struct fields recursively, replacing any field
// whose ENVPREFIX_FIELD[_SUBFIELD...] environment variable is set with the
// YAML-decoded value of that variable.
func overwriteFields(v reflect.Value, prefix string, env map[string]string) error {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < v.NumField(); i++ {
		sf := v.Type().Field(i)
		if !sf.IsExported() {
			continue
		}
		fieldPrefix := strings.ToUpper(prefix + "_" + sf.Name)
		fv := v.Field(i)

		if raw, ok := env[fieldPrefix]; ok {
			target := reflect.New(fv.Type())
			if err := yaml.Unmarshal([]byte(raw), target.Interface()); err != nil {
				return fmt.Errorf("env %s: %w", fieldPrefix, err)
			}
			fv.Set(target.Elem())
			continue
		}

		if fv.Kind() == reflect.Struct {
			if err := overwriteFields(fv, fieldPrefix, env); err != nil {
				return err
			}
		}
	}
	return nil
}
