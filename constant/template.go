package constant

// PluginTemplate is a text/template for scaffolding new Lua extractor plugins.
const PluginTemplate = `{{ $divider := repeat "-" (plus (max (len .MainURL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .MainURL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias link { name: string|nil, url: string, referer: string|nil, quality: number|string|nil, type: string|nil, headers: table|nil, extractor_data: string|nil }
---@alias subtitle { language: string, url: string, headers: table|nil }


----- IMPORTS -----
local html = require("html")
--- END IMPORTS ---



----- VARIABLES -----
{{ .NameGlobal }} = "{{ .Name }}"
{{ .MainURLGlobal }} = "{{ .MainURL }}"
{{ .RequiresRefererGlobal }} = {{ .RequiresReferer }}
--- END VARIABLES ---



----- MAIN -----

--- Extracts the playable links of an embed page.
-- @param url string Embed url owned by this plugin
-- @param referer string|nil Page the embed was found on
-- @return { links: link[], subtitles: subtitle[] }
function {{ .GetURLFn }}(url, referer)
	local page = http_tls.get(url, { Referer = referer or ({{ .MainURLGlobal }} .. "/") })
	local doc = html.parse(page)

	local links = {}
	doc:find("video source"):each(function(_, s)
		local src = fix_url(s:attr("src"))
		links[#links + 1] = {
			url = src,
			referer = {{ .MainURLGlobal }} .. "/",
			quality = parse_quality(s:attr("label") or ""),
			type = infer_type(src),
		}
	end)

	return { links = links, subtitles = {} }
end

--- END MAIN ---




----- HELPERS -----
--- END HELPERS ---

-- ex: ts=4 sw=4 et filetype=lua
`
