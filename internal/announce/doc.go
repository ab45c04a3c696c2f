// Package announce delivers the winner announcement.
//
// The primary channel is a chat webhook that accepts an embed payload
// (username, content, embeds[].fields). A Telegram chat can be added as a
// second channel; it receives the same message rendered as HTML text.
package announce
