package criteria

import (
	"strings"

	"github.com/viant/kernelsim/service/dao"
)

// FilterByState reports whether state satisfies every State parameter.
// Parameters with other names are ignored.
func FilterByState(state string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || !strings.EqualFold(parameter.Name, dao.StateParameter) {
			continue
		}
		if !matchState(state, parameter.Value) {
			return false
		}
	}
	return true
}

func matchState(state string, value interface{}) bool {
	switch actual := value.(type) {
	case string:
		return state == actual
	case []string:
		for _, s := range actual {
			if state == s {
				return true
			}
		}
		return false
	}
	return true
}
