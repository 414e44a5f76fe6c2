package kernelsim

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/kernelsim/runtime/kernel"
)

// StdoutListener prints every kernel change as a JSON line.
func StdoutListener(_ context.Context, changes []*kernel.Change) {
	for _, change := range changes {
		data, _ := json.Marshal(change)
		fmt.Println(string(data))
	}
}
