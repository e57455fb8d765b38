// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package ircmsg splits inbound IRC lines into their fields and renders
// outbound frames.
//
// The codec is deliberately shallow: a line is split on single spaces into
// at most four fields, so the last field keeps any embedded spaces. Verb
// handlers index into those fields directly.
package ircmsg
