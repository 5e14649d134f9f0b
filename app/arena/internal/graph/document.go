package graph

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/combatai/pkg/serializer"
)

// Document 行为图的持久化形式（yaml / json / msgpack）
type Document struct {
	Name      string                `yaml:"name" json:"name"`
	Ungrouped []NodeSpec            `yaml:"ungrouped" json:"ungrouped"`
	Groups    map[string][]NodeSpec `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// NodeSpec 扁平的节点描述，按 Type 取用对应字段
type NodeSpec struct {
	ID   string   `yaml:"id" json:"id"`
	Type NodeType `yaml:"type" json:"type"`
	Root bool     `yaml:"root,omitempty" json:"root,omitempty"`
	Next []string `yaml:"next,omitempty" json:"next,omitempty"`

	Kind ActionKind `yaml:"kind,omitempty" json:"kind,omitempty"`

	Priority   int              `yaml:"priority,omitempty" json:"priority,omitempty"`
	Entries    []ConditionEntry `yaml:"entries,omitempty" json:"entries,omitempty"`
	Connectors []Connector      `yaml:"connectors,omitempty" json:"connectors,omitempty"`

	// DecisionInterval 秒
	DecisionInterval  float64 `yaml:"decision_interval,omitempty" json:"decision_interval,omitempty"`
	EmergencyOverride bool    `yaml:"emergency_override,omitempty" json:"emergency_override,omitempty"`
	StickyBonus       float64 `yaml:"sticky_bonus,omitempty" json:"sticky_bonus,omitempty"`
	Temperature       float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MinSwitchScore    float64 `yaml:"min_switch_score,omitempty" json:"min_switch_score,omitempty"`
}

// Build 转换为运行时节点
func (s NodeSpec) Build() (Node, error) {
	base := BaseNode{NodeID: s.ID, NextNodeIDs: s.Next, IsRootNode: s.Root}
	switch s.Type {
	case TypeAction:
		return &ActionNode{BaseNode: base, Kind: s.Kind}, nil
	case TypeCondition:
		return &ConditionNode{
			BaseNode:   base,
			Entries:    s.Entries,
			Connectors: s.Connectors,
			Priority:   s.Priority,
		}, nil
	case TypeUtility:
		return &UtilitySelectorNode{
			BaseNode:          base,
			DecisionInterval:  time.Duration(s.DecisionInterval * float64(time.Second)),
			EmergencyOverride: s.EmergencyOverride,
			StickyBonus:       s.StickyBonus,
			Temperature:       s.Temperature,
			MinSwitchScore:    s.MinSwitchScore,
		}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownNodeType, "node %s: %q", s.ID, s.Type)
	}
}

func specOf(n Node) NodeSpec {
	s := NodeSpec{ID: n.ID(), Type: n.Type(), Root: n.IsRoot(), Next: n.Next()}
	switch v := n.(type) {
	case *ActionNode:
		s.Kind = v.Kind
	case *ConditionNode:
		s.Priority, s.Entries, s.Connectors = v.Priority, v.Entries, v.Connectors
	case *UtilitySelectorNode:
		s.DecisionInterval = v.DecisionInterval.Seconds()
		s.EmergencyOverride = v.EmergencyOverride
		s.StickyBonus = v.StickyBonus
		s.Temperature = v.Temperature
		s.MinSwitchScore = v.MinSwitchScore
	}
	return s
}

// Container 构造运行时图
func (d *Document) Container() (*Container, error) {
	c := &Container{Name: d.Name, Groups: make(map[string][]Node, len(d.Groups))}
	for _, s := range d.Ungrouped {
		n, err := s.Build()
		if err != nil {
			return nil, err
		}
		c.UngroupedNodes = append(c.UngroupedNodes, n)
	}
	for group, specs := range d.Groups {
		for _, s := range specs {
			n, err := s.Build()
			if err != nil {
				return nil, errors.Wrapf(err, "group %s", group)
			}
			c.Groups[group] = append(c.Groups[group], n)
		}
	}
	return c, nil
}

// NewDocument 由运行时图生成文档
func NewDocument(c *Container) *Document {
	d := &Document{Name: c.Name}
	for _, n := range c.UngroupedNodes {
		d.Ungrouped = append(d.Ungrouped, specOf(n))
	}
	if len(c.Groups) > 0 {
		d.Groups = make(map[string][]NodeSpec, len(c.Groups))
		for _, name := range c.GroupNames() {
			for _, n := range c.Groups[name] {
				d.Groups[name] = append(d.Groups[name], specOf(n))
			}
		}
	}
	return d
}

// Decode 使用指定序列化器解析
func Decode(data []byte, s serializer.Serializer) (*Container, error) {
	var d Document
	if err := s.Deserialize(data, &d); err != nil {
		return nil, errors.Wrap(err, "graph: decode document")
	}
	return d.Container()
}

// Encode 序列化运行时图
func Encode(c *Container, s serializer.Serializer) ([]byte, error) {
	return s.Serialize(NewDocument(c))
}

// BundleExt 二进制包的扩展名
const BundleExt = ".cgraph"

func isBundle(path string) bool {
	return strings.EqualFold(filepath.Ext(path), BundleExt)
}

// LoadFile 按扩展名选择格式读取图文件
func LoadFile(path string) (*Container, error) {
	decode := DecodeBundle
	if !isBundle(path) {
		s, err := serializer.ForPath(path)
		if err != nil {
			return nil, err
		}
		decode = func(data []byte) (*Container, error) { return Decode(data, s) }
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "graph: read %s", path)
	}
	c, err := decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "graph: load %s", path)
	}
	if c.Name == "" {
		c.Name = path
	}
	return c, nil
}

// SaveFile 按扩展名选择格式写出图文件，.cgraph 使用默认编译选项
func SaveFile(path string, c *Container) error {
	var (
		data []byte
		err  error
	)
	if isBundle(path) {
		data, err = EncodeBundle(c, DefaultBundleOptions())
	} else {
		var s serializer.Serializer
		if s, err = serializer.ForPath(path); err != nil {
			return err
		}
		data, err = Encode(c, s)
	}
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile 写出已编码的图数据
func WriteFile(path string, data []byte) error {
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "graph: write %s", path)
}
