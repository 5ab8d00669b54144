package main

import (
	"fmt"
	"time"
)

type Config struct {
	DoctorID                  string        `env:"DOCTOR_ID,default=main_doctor"`
	BufferSize                int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryInterval         time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH"`
	BlugeFilepath             string        `env:"BLUGE_FILEPATH"`
	CensoredWordsFile         string        `env:"CENSORED_WORDS_FILE"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	LogLevel                  string        `env:"LOG_LEVEL,default=INFO"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=3000"`
}

// CharacterRune converts the replacement setting to the single rune the
// moderator expects.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
