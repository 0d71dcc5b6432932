package handlers

import "github.com/famchat/famchat/pkg/i18n"

func __(message string) string {
	return i18n.Translate(message)
}
