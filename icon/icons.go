package icon

// Icon identifies a symbol.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Link
	Subtitle
	Lua
	Builtin
	Search
	Cross
	Progress
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Link: {
		emoji:   "🎬",
		nerd:    "",
		plain:   ">",
		kaomoji: "(⌐■_■)",
		squares: "🟦",
	},
	Subtitle: {
		emoji:   "💬",
		nerd:    "",
		plain:   "#",
		kaomoji: "(・_・)",
		squares: "🟨",
	},
	Lua: {
		emoji:   "🌙",
		nerd:    "",
		plain:   "Lua",
		kaomoji: "(◕‿◕)",
		squares: "🟪",
	},
	Builtin: {
		emoji:   "📦",
		nerd:    "",
		plain:   "Go",
		kaomoji: "(￣ー￣)",
		squares: "🟫",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "?",
		kaomoji: "(・・?)",
		squares: "⬜",
	},
	Cross: {
		emoji:   "❌",
		nerd:    "",
		plain:   "x",
		kaomoji: "(×_×)",
		squares: "⬛",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "\uf110",
		plain:   "...",
		kaomoji: "( ・_・)…",
		squares: "🔲",
	},
}
