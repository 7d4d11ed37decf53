package engine

import (
	"github.com/ben0x539/eve-log-alert/internal/combat"
	"github.com/ben0x539/eve-log-alert/internal/config"
	"github.com/ben0x539/eve-log-alert/internal/errors"
)

// CombatSettings maps the combat section of the configuration onto
// combat.Settings, resolving the damage profile by name.
func CombatSettings(c config.CombatConfig) (combat.Settings, error) {
	profile, ok := config.LookupProfile(c.Profile)
	if !ok {
		return combat.Settings{}, errors.NewConfigError("unknown damage profile", errors.ErrUnknownProfile).
			WithField("combat.profile").
			WithValue(c.Profile)
	}
	return combat.Settings{
		Window:       profile.Window,
		DPSThreshold: profile.DPSThreshold,
		Throttle:     c.Throttle(),
		NoIncoming:   c.NoIncoming(),
		NoOutgoing:   c.NoOutgoing(),
		UnderAttack:  c.UnderAttack(),
		SingleHit:    c.SingleHit,
		Idle:         c.Idle(),
		IdleRepeat:   c.IdleRepeat(),
		RareRepeat:   c.RareRepeat(),
		RareNames:    append([]string(nil), c.RareNames...),
	}, nil
}
