package config

import "time"

const (
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
	defaultOutputPattern = "{stem}_{timestamp}{ext}"
	defaultHTTPTimeout   = 10 * time.Second
	defaultBoltBucket    = "profiles"
	// defaultMaxFrames is the largest frame list the keyboard firmware accepts.
	defaultMaxFrames = 300
)

// defaultSlots are the user-editable slots on the reference keyboard.
var defaultSlots = []uint32{5, 6, 7}
