// Package services implements the driving port interfaces.
//
// The ingestion pipeline (IngestService) and the chat orchestrator
// (ChatService) are built from smaller parts that are usable on their own:
// Embedder batches and throttles embedding calls, Retriever turns a query
// into search hits. DocumentService owns uploads and text extraction.
//
// Services depend only on driven ports and never on concrete adapters.
package services
