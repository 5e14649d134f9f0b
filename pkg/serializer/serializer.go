package serializer

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat 无法根据扩展名识别格式
var ErrUnknownFormat = errors.New("serializer: unknown format")

// Serializer 序列化器接口
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	// ContentType 内容类型（用于日志）
	ContentType() string
}

// YAML 行为图默认的编辑格式
type YAML struct{}

func NewYAML() *YAML { return &YAML{} }

func (s *YAML) Serialize(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	return data, errors.Wrap(err, "serializer: yaml marshal")
}

func (s *YAML) Deserialize(data []byte, v any) error {
	return errors.Wrap(yaml.Unmarshal(data, v), "serializer: yaml unmarshal")
}

func (s *YAML) ContentType() string { return "application/yaml" }

// JSON JSON 序列化器
type JSON struct{}

func NewJSON() *JSON { return &JSON{} }

func (s *JSON) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	return data, errors.Wrap(err, "serializer: json marshal")
}

func (s *JSON) Deserialize(data []byte, v any) error {
	return errors.Wrap(json.Unmarshal(data, v), "serializer: json unmarshal")
}

func (s *JSON) ContentType() string { return "application/json" }

// MsgPack 二进制格式，用于预编译的行为图
type MsgPack struct{}

func NewMsgPack() *MsgPack { return &MsgPack{} }

func (s *MsgPack) Serialize(v any) ([]byte, error) {
	data, err := Encode(v)
	return data, errors.Wrap(err, "serializer: msgpack encode")
}

func (s *MsgPack) Deserialize(data []byte, v any) error {
	return errors.Wrap(Decode(data, v), "serializer: msgpack decode")
}

func (s *MsgPack) ContentType() string { return "application/msgpack" }

// ForPath 按扩展名选择序列化器
func ForPath(path string) (Serializer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAML(), nil
	case ".json":
		return NewJSON(), nil
	case ".msgpack", ".mp":
		return NewMsgPack(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "path %s", path)
	}
}
