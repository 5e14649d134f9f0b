package fighter

import (
	"time"

	"github.com/lk2023060901/combatai/app/arena/internal/combat"
)

type hitResult int

const (
	hitMissed hitResult = iota
	hitBlocked
	hitGuardBroken
	hitDamaged
	hitKilled
)

func (r hitResult) String() string {
	switch r {
	case hitMissed:
		return "missed"
	case hitBlocked:
		return "blocked"
	case hitGuardBroken:
		return "guard_broken"
	case hitDamaged:
		return "damaged"
	case hitKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// hit 待结算的一次命中，from 为出手时攻击者的位置
type hit struct {
	attacker string
	target   *Fighter
	from     combat.Vec2
	reach    float64
	damage   float64
	heavy    bool
	drain    float64
}

// advance 推进计时器与体力恢复，返回本帧需要结算的命中
func (f *Fighter) advance(now time.Time, dt time.Duration) *hit {
	h, ended := f.advanceTimers(now, dt)
	notifyEnd(ended)
	return h
}

func (f *Fighter) advanceTimers(now time.Time, dt time.Duration) (h *hit, ended []attackSub) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == combat.StateDeath {
		return nil, nil
	}
	if f.state == combat.StateStunned && !now.Before(f.stunUntil) {
		f.state = combat.StateNormal
	}

	if sw := f.swing; sw != nil {
		if !sw.landed && !now.Before(sw.hitAt) {
			sw.landed = true
			if t, ok := sw.target.(*Fighter); ok && t != f {
				h = &hit{
					attacker: f.id,
					target:   t,
					from:     f.pos,
					reach:    sw.reach,
					damage:   sw.damage,
					heavy:    sw.heavy,
					drain:    f.stats.HeavyBlockDrainMultiplier,
				}
			}
		}
		if !now.Before(sw.endAt) {
			f.swing = nil
			if f.state == combat.StateAttacking {
				f.state = combat.StateNormal
			}
			ended = f.subscribersLocked()
		}
	}

	f.regenLocked(now, dt)
	return h, ended
}

// regenLocked 格挡、蓄力、恢复延迟与力竭期间不恢复体力
func (f *Fighter) regenLocked(now time.Time, dt time.Duration) {
	if f.state == combat.StateBlocking || f.charging {
		return
	}
	start := now.Add(-dt)
	for _, until := range []time.Time{f.regenBlockedUntil, f.exhaustedUntil} {
		if until.After(start) {
			start = until
		}
	}
	if !now.After(start) {
		return
	}
	f.stamina = min(f.stats.MaxStamina, f.stamina+f.stats.StaminaRegen*now.Sub(start).Seconds())
}

// takeHit 结算一次命中；未格挡的命中会打断攻击并造成硬直
func (f *Fighter) takeHit(h *hit, now time.Time) hitResult {
	res, interrupted := f.applyHit(h, now)
	notifyEnd(interrupted)
	return res
}

func (f *Fighter) applyHit(h *hit, now time.Time) (hitResult, []attackSub) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == combat.StateDeath || f.pos.Dist(h.from) > h.reach {
		return hitMissed, nil
	}

	if f.state == combat.StateBlocking {
		drain := f.stats.StaminaDrainPerBlock * f.stats.MaxStamina
		if h.heavy {
			drain *= h.drain
		}
		f.spendLocked(drain, now)
		if f.stamina > 0 {
			return hitBlocked, nil
		}
		f.state = combat.StateStunned
		f.stunUntil = now.Add(f.stats.StunDuration)
		return hitGuardBroken, nil
	}

	attacking := f.state == combat.StateAttacking
	f.health = max(0, f.health-h.damage)
	f.lastHitAt = now
	f.swing = nil
	f.charging = false
	f.chargeOn = nil

	res := hitDamaged
	if f.health == 0 {
		f.state = combat.StateDeath
		f.velocity = combat.Vec2{}
		res = hitKilled
	} else {
		f.state = combat.StateStunned
		f.stunUntil = now.Add(f.stats.StunDuration)
	}
	if attacking {
		return res, f.subscribersLocked()
	}
	return res, nil
}
