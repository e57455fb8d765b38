// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package modules contains the stock command modules of the bot.
//
// Each module is built by a [bot.ModuleFactory] from [Factories], so the
// loader can create fresh instances by name at runtime ("load dice").
package modules

import (
	"github.com/rs/zerolog"

	"github.com/BackupTheBerlios/suzy-svn/pkg/bot"
)

// Factories returns the factory table for the stock modules. Modules that
// need settings read them from cfg when they are instantiated.
func Factories(cfg *bot.Config, log zerolog.Logger) map[string]bot.ModuleFactory {
	return map[string]bot.ModuleFactory{
		"help": func(string) (bot.Module, error) {
			return NewHelpModule(), nil
		},
		"dice": func(string) (bot.Module, error) {
			return NewDiceModule(), nil
		},
		"channelmanagement": func(string) (bot.Module, error) {
			return NewChannelManagementModule(), nil
		},
		"joinchannel": func(network string) (bot.Module, error) {
			return NewJoinChannelModule(cfg.Channels, log.With().Str("network", network).Logger()), nil
		},
		"nickservauth": func(network string) (bot.Module, error) {
			return NewNickservAuthModule(cfg.NickservAuth, log.With().Str("network", network).Logger()), nil
		},
	}
}
