// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package moderation holds the text checks applied to user input.

IsInappropriate rejects poll titles that match a fixed blocklist of
case-insensitive patterns. Short words (porn, xxx, sex, adult) only match
on word boundaries, so "Sussex" and "Adulthood" pass.

TitleKey produces the key used to detect duplicate candidate titles within
a poll. It uses golang.org/x/text/cases folding rather than strings.ToLower
so that non-ASCII titles such as "AMÉLIE" and "Amélie" compare equal.
*/
package moderation
