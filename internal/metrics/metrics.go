// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whoyap_chats_imported_total",
		Help: "Transcripts imported into group chats.",
	})
	MessagesImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whoyap_messages_imported_total",
		Help: "Messages persisted by imports.",
	})
	EmbeddingsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whoyap_embeddings_stored_total",
		Help: "Message embeddings written.",
	})
	EmbeddingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whoyap_embedding_failures_total",
		Help: "Messages whose embedding could not be computed.",
	})
	RoundsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whoyap_rounds_served_total",
		Help: "Questions generated for players.",
	})
	Answers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whoyap_answers_total",
		Help: "Scored answers by outcome.",
	}, []string{"outcome"})
	JoinDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whoyap_join_decisions_total",
		Help: "Join requests decided, by resulting status.",
	}, []string{"status"})
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whoyap_llm_requests_total",
		Help: "LLM passthrough calls by result.",
	}, []string{"result"})
)
