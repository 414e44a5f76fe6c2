package scenario

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/kernelsim/internal/yml"
	"github.com/viant/kernelsim/runtime/kernel"
	"github.com/viant/kernelsim/runtime/process"
	"github.com/viant/kernelsim/service/meta"
	"github.com/viant/toolbox"
	"gopkg.in/yaml.v3"
)

// Service loads scenarios from any afs-supported URL.
type Service struct {
	metaService *meta.Service
}

// New creates a scenario service; a nil metaService reads URLs as is.
func New(metaService *meta.Service) *Service {
	if metaService == nil {
		metaService = meta.New(afs.New(), "")
	}
	return &Service{metaService: metaService}
}

// Load loads a scenario from YAML at the specified URL; a missing extension
// defaults to .yaml.
func (s *Service) Load(ctx context.Context, URL string) (*Scenario, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	var node yaml.Node
	if err := s.metaService.Load(ctx, URL, &node); err != nil {
		return nil, fmt.Errorf("failed to load scenario from %s: %w", URL, err)
	}
	ret, err := Parse((*yml.Node)(&node))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario from %s: %w", URL, err)
	}
	ret.URL = URL
	if ret.Name == "" {
		base := filepath.Base(URL)
		ret.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ret, nil
}

// DecodeYAML decodes a scenario from YAML.
func DecodeYAML(encoded []byte) (*Scenario, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return Parse((*yml.Node)(&node))
}

// Parse converts a YAML node into a validated scenario.
func Parse(node *yml.Node) (*Scenario, error) {
	root := node.Root()
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected scenario mapping")
	}
	ret := &Scenario{}
	err := root.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			ret.Name = valueNode.Value
		case "description":
			ret.Description = valueNode.Value
		case "config", "kernel":
			config := kernel.DefaultConfig()
			if err := valueNode.Decode(&config); err != nil {
				return fmt.Errorf("line %d: invalid config: %w", valueNode.Line, err)
			}
			ret.Config = &config
		case "steps":
			return valueNode.Items(func(_ int, itemNode *yml.Node) error {
				step, err := parseStep(itemNode)
				if err != nil {
					return err
				}
				ret.Steps = append(ret.Steps, step)
				return nil
			})
		default:
			return fmt.Errorf("line %d: unsupported scenario attribute: %v", valueNode.Line, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

func parseStep(node *yml.Node) (*Step, error) {
	step := &Step{Line: node.Line}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "op":
			step.Op = kernel.Operation(strings.ToLower(valueNode.Value))
		case "priority":
			step.Priority, err = toolbox.ToInt(valueNode.Interface())
		case "pid":
			step.PID, err = asPID(valueNode)
		case "payload":
			step.Payload = toolbox.AsString(valueNode.Interface())
		case "states":
			step.States, err = parseStates(valueNode)
		case "expect":
			step.Expect, err = parseExpect(valueNode)
		default:
			return fmt.Errorf("line %d: unsupported step attribute: %v", valueNode.Line, key)
		}
		if err != nil {
			return fmt.Errorf("line %d: invalid %v: %w", valueNode.Line, key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

func parseExpect(node *yml.Node) (*Expect, error) {
	expect := &Expect{}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "error":
			expect.Error = toolbox.AsString(valueNode.Interface())
		case "running":
			return assignPID(&expect.Running, valueNode)
		case "pid":
			return assignPID(&expect.PID, valueNode)
		case "sender":
			return assignPID(&expect.Sender, valueNode)
		case "payload":
			payload := toolbox.AsString(valueNode.Interface())
			expect.Payload = &payload
		case "pids":
			expect.PIDs = []int{}
			return valueNode.Items(func(_ int, pidNode *yml.Node) error {
				pid, err := asPID(pidNode)
				if err != nil {
					return fmt.Errorf("line %d: %w", pidNode.Line, err)
				}
				expect.PIDs = append(expect.PIDs, pid)
				return nil
			})
		case "blocked":
			blocked := toolbox.AsBoolean(valueNode.Interface())
			expect.Blocked = &blocked
		case "state":
			expect.State = map[int]process.State{}
			return valueNode.Pairs(func(pidKey string, stateNode *yml.Node) error {
				pid, err := parsePID(pidKey)
				if err != nil {
					return fmt.Errorf("line %d: invalid pid %q: %w", stateNode.Line, pidKey, err)
				}
				expect.State[pid] = process.State(stateNode.Value)
				return nil
			})
		default:
			return fmt.Errorf("line %d: unsupported expect attribute: %v", valueNode.Line, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expect, nil
}

// parseStates accepts a single state or a sequence of states.
func parseStates(node *yml.Node) ([]process.State, error) {
	if node.Kind != yaml.SequenceNode {
		return []process.State{process.State(node.Value)}, nil
	}
	var states []process.State
	err := node.Items(func(_ int, item *yml.Node) error {
		states = append(states, process.State(item.Value))
		return nil
	})
	return states, err
}

func assignPID(dest **int, node *yml.Node) error {
	pid, err := asPID(node)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*dest = &pid
	return nil
}

func asPID(node *yml.Node) (int, error) {
	return parsePID(toolbox.AsString(node.Interface()))
}

// parsePID accepts a number or "idle".
func parsePID(value string) (int, error) {
	if strings.EqualFold(value, "idle") {
		return process.IdlePID, nil
	}
	return toolbox.ToInt(value)
}
