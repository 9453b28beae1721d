// Package agent provides the agent implementations used throughout the
// course lessons: a model-backed conversational agent with tool calling,
// plus composition agents (sequential, parallel, loop, supervisor) for
// building multi-agent systems.
//
// All agents embed BaseAgent for hierarchy management and implement
// core.Agent. They communicate exclusively through the RunContext's event
// channel and staged state deltas.
package agent
