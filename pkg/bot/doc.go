// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bot implements a persistent IRC client that dispatches chat
// commands to pluggable modules.
//
// # Core Types
//
// [Client] owns one server connection. It reconnects with a linear backoff,
// keeps itself alive with periodic PINGs and answers server PINGs. All
// outbound traffic goes through a [SendQueue], which collapses duplicate
// frames and pauses after each burst until the server answers a flood probe.
//
// [Registry] maps command names to [Module] values. When two modules declare
// the same name, the later one gets it under "<namespace>:<name>", where the
// namespace is the module's type name without the "Module" suffix. Modules
// are loaded and unloaded at runtime through the built-in [LoaderModule] or
// the admin HTTP API at POST /api/reload-modules.
//
// [Router] parses chat lines into commands. Commands a module lists as
// restricted may only be run by members of the admin channel, which are
// tracked in a [PrivilegeSet] from NAMES, JOIN, PART, QUIT and NICK.
//
// # Failure Isolation
//
// A module that returns an error or panics never takes the client down.
// The requester gets "Execution failed: <kind>: <detail>" and the next line
// is processed normally. Connect hooks are isolated the same way.
//
// # Sub-packages
//
//   - modules contains the stock modules (help, dice, channel management,
//     channel auto-join and NickServ authentication).
package bot
