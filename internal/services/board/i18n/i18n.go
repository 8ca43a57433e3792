// Package i18n provides the localized short messages returned by the board
// stores.
package i18n

import (
	platformi18n "github.com/louisbranch/missionboard/internal/platform/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	KeyUsernameRequired = "friends.username_required"
	KeyMessageRequired  = "chat.message_required"
	KeyRoomRequired     = "chat.room_required"
	KeyAlreadyFriends   = "friends.already_friends"
	KeyPendingIncoming  = "friends.pending_incoming"
)

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// PrinterFor resolves locale against the supported set and returns its
// printer.
func PrinterFor(locale string) *message.Printer {
	return Printer(platformi18n.Resolve(locale))
}
