package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Thai

	// Friends
	message.SetString(lang, KeyUsernameRequired, "ระบุชื่อผู้ใช้")
	message.SetString(lang, KeyAlreadyFriends, "คุณเป็นเพื่อนกับ %s แล้ว")
	message.SetString(lang, KeyPendingIncoming, "%s ส่งคำขอเป็นเพื่อนถึงคุณแล้ว")

	// Chat
	message.SetString(lang, KeyMessageRequired, "พิมพ์ข้อความ")
	message.SetString(lang, KeyRoomRequired, "เลือกห้องแชท")
}
