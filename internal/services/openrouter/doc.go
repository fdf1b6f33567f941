// Package openrouter talks to the OpenRouter chat completion API. The
// client exposes a single Generate call; retry policy belongs to the
// callers that know whether a failure is worth waiting out.
package openrouter
