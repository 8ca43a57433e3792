package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.AmericanEnglish

	// Friends
	message.SetString(lang, KeyUsernameRequired, "Enter a username")
	message.SetString(lang, KeyAlreadyFriends, "You are already friends with %s")
	message.SetString(lang, KeyPendingIncoming, "%s already sent you a request")

	// Chat
	message.SetString(lang, KeyMessageRequired, "Enter a message")
	message.SetString(lang, KeyRoomRequired, "Choose a room")
}
