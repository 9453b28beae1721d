package core

// Agent is the interface every processing unit in AgentAcademy implements.
//
// Agents receive input through a RunContext, do their work, and emit events
// to report results and state changes back to the runner. The sub-agent
// methods support hierarchical compositions such as supervisors and
// sequential pipelines.
//
// Implementations must respect context cancellation and emit all output
// through the provided RunContext.
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
	SetSubAgents(children ...Agent) error
	SubAgents() []Agent
	Parent() Agent
	FindAgent(name string) Agent
}

// AgentInfo carries identifying details about an agent used in contexts and
// events. Name is the external identifier; Type categorizes the
// implementation (e.g. "model", "supervisor", "worker").
type AgentInfo struct{ Name, Type string }
