// Package openaichat adapts the official OpenAI SDK to the text
// generation interface the matcher and cluster refiner consume. It is
// the alternative to the OpenRouter client for deployments that talk to
// OpenAI (or an OpenAI-compatible gateway) directly.
package openaichat
