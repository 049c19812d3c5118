// Package pathway provides a multi-specialist conversational assistant for
// climate-economy career guidance.
//
// The core is the agent orchestration runtime: a stateful graph-based
// workflow engine that classifies each incoming user turn, routes it to one
// of eight specialist agents (a supervisor plus seven domain specialists),
// coordinates human-in-the-loop interrupts, accumulates per-conversation
// state with incremental findings and confidence scores, and streams partial
// results back to the caller.
//
// # Architecture
//
//	Transport -> Supervisor Workflow -> (Agent Runtime x Specialist) -> LLM Gateway + Memory + Prompt Registry
//
// The supervisor workflow is a compiled graph (package graph) whose nodes
// invoke specialists (package specialists) through the uniform Agent
// Contract (package agentcore). Findings and messages accumulate into graph
// state; interrupts suspend execution pending a new human message.
package pathway
