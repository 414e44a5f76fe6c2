package yml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNode(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
Name: demo
steps:
  - op: create
    priority: 1
  - op: send
    payload: hi
`), &doc))

	root := (*Node)(&doc).Root()
	assert.Equal(t, "demo", root.Lookup("name").Value)
	assert.Nil(t, root.Lookup("missing"))

	var ops []string
	err := root.Lookup("steps").Items(func(index int, node *Node) error {
		return node.Pairs(func(key string, value *Node) error {
			if key == "op" {
				ops = append(ops, value.Value)
			}
			return nil
		})
	})
	assert.NoError(t, err)
	assert.EqualValues(t, []string{"create", "send"}, ops)

	steps := root.Lookup("steps").Interface().([]interface{})
	assert.Equal(t, 1, steps[0].(map[string]interface{})["priority"])

	assert.Error(t, root.Items(func(int, *Node) error { return nil }))
}
