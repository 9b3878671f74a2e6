package config

import "time"

func msToDuration(ms int) time.Duration  { return time.Duration(ms) * time.Millisecond }
func secToDuration(s int) time.Duration  { return time.Duration(s) * time.Second }
