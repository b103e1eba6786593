package handler

var (
	welcomeText = "Hi!\n" +
		"I'm a Odesli Bot. You can message me a link to a supported " +
		"music streaming platform and I will respond with links from all " +
		"the platforms. If you invite me to a group chat I will do the " +
		"same as well as trying to delete original message (you must " +
		"promote me to admin to enable this behavior).\n" +
		"<b>Supported platforms:</b> %s.\n" +
		"Powered by great <a href=\"https://odesli.co/\">Odesli</a> " +
		"(thank you guys!)."
	groupReplyHeader = "<b>%s wrote:</b> %s\n"
	songEntryLine    = "%d. %s - %s"
	failedEntryLine  = "%d. %s"
	platformLinkTag  = `<a href="%s">%s</a>`
	linkSeparator    = " | "

	settingsText = "⚙️ <b>Group settings</b>\n\n" +
		"🧹 Delete original messages: %s\n" +
		"🔗 Detect links in messages: %s\n\n" +
		"Tap a button below to change a setting."
	settingsPrivateText = "Settings only exist for group chats. In a private " +
		"chat just send me a music link."
	settingsAdminOnly   = "❌ Only group admins can change group settings"
	settingsLoadFailed  = "❌ Failed to load settings, try again later"
	settingsSaveFailed  = "❌ Failed to save settings"
	autoDeleteEnabled   = "✅ Original messages will be deleted"
	autoDeleteDisabled  = "✅ Original messages will be kept"
	linkDetectEnabled   = "✅ Link detection enabled"
	linkDetectDisabled  = "✅ Link detection disabled"
	autoDeleteLabel     = "Delete original"
	linkDetectionLabel  = "Detect links"
	closeButtonLabel    = "Close"

	statusText = `<b>Bot status</b>
Cached songs: %d
Cache hits: %d
Cache misses: %d
Replies sent: %d

<b>Supported platforms:</b> %s`

	aboutText = `<b>SongLinkBot-Go</b>
Version: %s
Source: https://github.com/akarpov91/SongLinkBot-Go

Commit: %s
Built: %s (%s)
Runtime: %s`

	reloadDisabled = "❌ Script reload is not configured"
	reloadFailed   = "❌ Reload failed: "
	reloadDone     = "✅ Script platforms reloaded"

	inlineHelpTitle       = "Paste a link to a song"
	inlineHelpDescription = "I answer with links for every supported platform"
	inlineHelpMessage     = "Send me a music streaming link and I will reply " +
		"with links from all supported platforms."
	inlineNoMatchTitle       = "Couldn't resolve this link"
	inlineNoMatchDescription = "No match found or the resolution service is unavailable"
)
