package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/model"
	"github.com/hupe1980/agentacademy/tool"
)

// SupervisorAgentOptions configures a SupervisorAgent.
type SupervisorAgentOptions struct {
	Instruction Instruction
	MaxRounds   int
	OutputKey   string
}

// SupervisorAgent routes work between member agents using a language model.
// Each round the model either hands the task to a member via the transfer
// tool, or produces the final answer. Member outputs are fed back to the
// model as tool results, so routing decisions can build on what members
// returned so far.
type SupervisorAgent struct {
	BaseAgent
	llm         model.Model
	members     []core.Agent
	registry    *tool.Registry
	instruction Instruction
	maxRounds   int
	outputKey   string
}

// NewSupervisorAgent creates a supervisor over the given members. The default
// routing instruction is derived from the member names and descriptions.
func NewSupervisorAgent(name string, llm model.Model, members []core.Agent, optFns ...func(o *SupervisorAgentOptions)) *SupervisorAgent {
	opts := SupervisorAgentOptions{
		MaxRounds: 10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &SupervisorAgent{
		BaseAgent:   NewBaseAgent(name),
		llm:         llm,
		members:     members,
		registry:    tool.NewRegistry(tool.NewTransferToAgentTool()),
		instruction: opts.Instruction,
		maxRounds:   opts.MaxRounds,
		outputKey:   opts.OutputKey,
	}
	_ = a.SetSubAgents(members...)

	return a
}

// Run implements core.Agent.
func (s *SupervisorAgent) Run(runCtx *core.RunContext) error {
	instructions, err := s.resolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("resolve instructions: %w", err)
	}

	var contents []core.Content
	if len(runCtx.UserContent.Parts) > 0 {
		contents = append(contents, runCtx.UserContent)
	}

	for round := 0; round < s.maxRounds; round++ {
		if err := runCtx.Limiter.Increment(); err != nil {
			return err
		}

		resp, err := s.generate(runCtx, model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        s.toolDefinitions(),
		})
		if err != nil {
			return fmt.Errorf("supervisor generation failed: %w", err)
		}

		ev := core.NewEvent(runCtx.RunID, s.Name())
		ev.Content = &resp.Content

		calls := functionCalls(resp.Content)

		if len(calls) == 0 {
			if s.outputKey != "" {
				runCtx.SetState(s.outputKey, resp.Content.Text())
			}
			return runCtx.EmitEvent(ev)
		}

		if err := runCtx.EmitEvent(ev); err != nil {
			return err
		}
		contents = append(contents, resp.Content)

		toolContents, err := s.dispatchRound(runCtx, calls)
		if err != nil {
			return err
		}
		contents = append(contents, toolContents...)
	}

	return fmt.Errorf("supervisor %s exceeded %d routing rounds", s.Name(), s.maxRounds)
}

// dispatchRound executes the transfer calls of one round. The targeted
// member runs to completion and its final text is returned to the model as
// the tool result. Routing mistakes (unknown member) are reported back to the
// model instead of failing the run.
func (s *SupervisorAgent) dispatchRound(runCtx *core.RunContext, calls []core.FunctionCall) ([]core.Content, error) {
	var contents []core.Content

	for _, call := range calls {
		id := call.ID
		if id == "" {
			id = core.NewID()
		}

		toolCtx := core.NewToolContext(runCtx, id)
		_, dispatchErr := s.registry.Dispatch(toolCtx, call.Name, call.Arguments)

		var result any
		var callErr error

		switch {
		case dispatchErr != nil:
			callErr = dispatchErr
		case toolCtx.Actions().TransferToAgent != nil:
			target := *toolCtx.Actions().TransferToAgent
			member := s.findMember(target)
			if member == nil {
				callErr = fmt.Errorf("unknown agent %q, available: %s", target, s.memberNames())
				break
			}

			runCtx.LogInfo("supervisor.route", "supervisor", s.Name(), "member", target)

			output, runErr := s.runMember(runCtx, member)
			if runErr != nil {
				return nil, fmt.Errorf("member %s failed: %w", target, runErr)
			}
			result = output
		default:
			callErr = fmt.Errorf("no transfer requested")
		}

		ev := core.NewFunctionResponseEvent(s.Name(), id, call.Name, result, callErr)
		ev.RunID = runCtx.RunID
		if err := runCtx.EmitEvent(ev); err != nil {
			return nil, err
		}
		contents = append(contents, *ev.Content)
	}

	return contents, nil
}

// runMember executes a member agent, forwarding its events to the parent
// context while capturing the final text output.
func (s *SupervisorAgent) runMember(runCtx *core.RunContext, member core.Agent) (string, error) {
	interceptCh := make(chan core.Event, 16)
	memberCtx := runCtx.NewChildContext(interceptCh, buildBranchPath(runCtx.Branch, fmt.Sprintf("%s.%s", s.Name(), member.Name())))

	done := make(chan error, 1)
	go func() {
		done <- member.Run(memberCtx)
		close(interceptCh)
	}()

	var output string
	for event := range interceptCh {
		if event.IsFinalResponse() && event.Content != nil {
			output = event.Content.Text()
		}
		if err := runCtx.EmitEvent(event); err != nil {
			<-done
			return output, err
		}
	}

	return output, <-done
}

func (s *SupervisorAgent) resolveInstructions(runCtx *core.RunContext) (string, error) {
	if !s.instruction.IsStatic() || s.instruction.text != "" {
		return s.instruction.Resolve(runCtx)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a supervisor coordinating the following agents:\n", s.Name())
	for _, m := range s.members {
		fmt.Fprintf(&b, "- %s: %s\n", m.Name(), m.Description())
	}
	b.WriteString("\nUse the transfer_to_agent tool to hand the task to the agent best suited for it. ")
	b.WriteString("When the collected results are sufficient, reply with the final answer instead of transferring.")

	return b.String(), nil
}

func (s *SupervisorAgent) findMember(name string) core.Agent {
	for _, m := range s.members {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

func (s *SupervisorAgent) memberNames() string {
	names := make([]string, 0, len(s.members))
	for _, m := range s.members {
		names = append(names, m.Name())
	}
	return strings.Join(names, ", ")
}

func (s *SupervisorAgent) toolDefinitions() []model.ToolDefinition {
	tools := s.registry.Tools()
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// generate drives a single non-streaming model turn.
func (s *SupervisorAgent) generate(runCtx *core.RunContext, req model.Request) (model.Response, error) {
	respCh, errCh := s.llm.Generate(runCtx.Context, req)

	var final model.Response
	for {
		select {
		case resp, ok := <-respCh:
			if !ok {
				return final, nil
			}
			if !resp.Partial {
				final = resp
			}
		case err, ok := <-errCh:
			if err != nil {
				return model.Response{}, err
			}
			if !ok {
				errCh = nil
			}
		case <-runCtx.Done():
			return model.Response{}, runCtx.Err()
		}
	}
}
