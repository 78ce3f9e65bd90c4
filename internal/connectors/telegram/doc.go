// Package telegram connects pollbridge to the Telegram Bot API: a
// new-message polling trigger, webhook registration for push delivery,
// and a chats dictionary. The bot token rides in the API base URL, so
// the remote caller itself stays unauthenticated.
package telegram
