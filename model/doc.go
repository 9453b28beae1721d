// Package model defines the provider-agnostic abstractions for driving
// language models inside AgentAcademy.
//
// Core goals:
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate scripted mocking for tests and offline lessons (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (agents, runner) remain decoupled from vendor SDKs.
package model
