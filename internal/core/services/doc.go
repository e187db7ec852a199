// Package services implements the driving port interfaces.
// Services contain the core pipeline logic - ingestion, embedding,
// retrieval and answering - and orchestrate calls to driven ports.
package services
