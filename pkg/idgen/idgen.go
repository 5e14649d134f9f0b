// Package idgen 生成按时间递增的 64 位 id
package idgen

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sony/sonyflake"
)

// Epoch id 时间分量的起点
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator id 生成器
type Generator interface {
	NextID() (uint64, error)
}

// Sonyflake 基于 sonyflake 的生成器，可并发调用
type Sonyflake struct {
	sf *sonyflake.Sonyflake
}

var _ Generator = (*Sonyflake)(nil)

// NewSonyflake machineID 在同一集群内必须唯一
func NewSonyflake(machineID uint16) (*Sonyflake, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: Epoch,
		MachineID: func() (uint16, error) { return machineID, nil },
	})
	if err != nil {
		return nil, errors.Wrap(err, "idgen: create sonyflake")
	}
	return &Sonyflake{sf: sf}, nil
}

func (g *Sonyflake) NextID() (uint64, error) {
	id, err := g.sf.NextID()
	return id, errors.Wrap(err, "idgen: next id")
}
