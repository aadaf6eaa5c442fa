// Package services implements the driving port interfaces.
// Services contain the core business logic - segmenting, embedding,
// fusing and curating - and orchestrate calls to driven ports
// (adapters). They are pure Go with no CGO or external dependencies.
package services
