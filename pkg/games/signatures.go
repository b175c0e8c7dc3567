// GamerCred Companion
// Copyright (c) 2026 The GamerCred Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of GamerCred Companion.
//
// GamerCred Companion is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GamerCred Companion is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GamerCred Companion.  If not, see <http://www.gnu.org/licenses/>.

package games

// KnownExecutables are process names of games and game clients. Entries
// are matched case-insensitively; ".exe" may be left off on Linux and
// macOS where the process name has no extension.
var KnownExecutables = []string{
	// launchers and clients
	"steam.exe",
	"steamwebhelper.exe",
	"epicgameslauncher.exe",
	"battle.net.exe",
	"origin.exe",
	"eadesktop.exe",
	"galaxyclient.exe",
	"upc.exe",
	"ubisoftconnect.exe",
	"riotclientservices.exe",
	"rockstarlauncher.exe",
	"minecraftlauncher.exe",
	"lutris",
	"heroic",
	"retroarch.exe",

	// competitive
	"valorant.exe",
	"valorant-win64-shipping.exe",
	"league of legends.exe",
	"leagueclient.exe",
	"cs2.exe",
	"csgo.exe",
	"dota2.exe",
	"overwatch.exe",
	"r5apex.exe",
	"r5apex_dx12.exe",
	"fortniteclient-win64-shipping.exe",
	"rocketleague.exe",
	"rainbowsix.exe",
	"rainbowsix_vulkan.exe",
	"tslgame.exe",
	"deadlock.exe",
	"marvel-win64-shipping.exe",
	"cod.exe",
	"modernwarfare.exe",
	"destiny2.exe",
	"wow.exe",
	"hearthstone.exe",
	"pathofexile.exe",
	"pathofexile_x64steam.exe",
	"pathofexile2.exe",

	// single player and sandbox
	"minecraft.exe",
	"javaw.exe",
	"gta5.exe",
	"gta5_enhanced.exe",
	"rdr2.exe",
	"cyberpunk2077.exe",
	"eldenring.exe",
	"witcher3.exe",
	"bg3.exe",
	"bg3_dx11.exe",
	"starfield.exe",
	"skyrimse.exe",
	"fallout4.exe",
	"terraria.exe",
	"stardew valley.exe",
	"hades.exe",
	"hades2.exe",
	"hollow_knight.exe",
	"factorio.exe",
	"rimworldwin64.exe",
	"helldivers2.exe",
	"palworld-win64-shipping.exe",
	"robloxplayerbeta.exe",
	"among us.exe",
	"fallguys_client_game.exe",
	"sekiro.exe",
	"darksoulsiii.exe",
	"monsterhunterwilds.exe",
	"ffxiv_dx11.exe",
	"thelastofus.exe",
	"godofwar.exe",
	"blackmythwukong.exe",
}

// Keywords catch engines and launchers whose executable names vary per
// title. They are matched as substrings.
var Keywords = []string{
	"-win64-shipping",
	"unityplayer",
	"unrealgame",
	"riotclient",
	"epicgames",
	"gamelaunch",
	"steamapps",
}
