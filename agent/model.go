package agent

import (
	"fmt"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/model"
	"github.com/hupe1980/agentacademy/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction        Instruction
	Tools              []tool.Tool
	EnableStreaming    bool
	AllowTransfer      bool
	MaxToolRounds      int
	MaxHistoryMessages int
	OutputKey          string
}

// ModelAgent integrates a language model with a tool registry. Each Run is a
// reason-act loop: the model generates a turn, any requested tool calls are
// executed and their results fed back, until the model produces a turn with
// no tool calls or the round limit is hit.
type ModelAgent struct {
	BaseAgent
	llm           model.Model
	instruction   Instruction
	registry      *tool.Registry
	stream        bool
	allowTransfer bool
	maxToolRounds int
	maxHistory    int
	outputKey     string
}

// NewModelAgent creates a model-backed agent with sensible defaults:
// streaming enabled, transfers enabled, ten tool rounds, twenty history
// messages.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		EnableStreaming:    true,
		AllowTransfer:      true,
		MaxToolRounds:      10,
		MaxHistoryMessages: 20,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelAgent{
		BaseAgent:     NewBaseAgent(name),
		llm:           llm,
		instruction:   opts.Instruction,
		registry:      tool.NewRegistry(opts.Tools...),
		stream:        opts.EnableStreaming,
		allowTransfer: opts.AllowTransfer,
		maxToolRounds: opts.MaxToolRounds,
		maxHistory:    opts.MaxHistoryMessages,
		outputKey:     opts.OutputKey,
	}
}

// RegisterTools adds tools to the agent's registry.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	a.registry.Register(tools...)
}

// Tools returns the registered tools.
func (a *ModelAgent) Tools() []tool.Tool { return a.registry.Tools() }

// Run implements core.Agent.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.Name(), "run", runCtx.RunID)

	instructions, err := a.instruction.Resolve(runCtx)
	if err != nil {
		return fmt.Errorf("resolve instructions: %w", err)
	}

	contents := a.buildContents(runCtx)

	for round := 0; round < a.maxToolRounds; round++ {
		if err := runCtx.Limiter.Increment(); err != nil {
			return err
		}

		resp, err := a.generate(runCtx, model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        a.toolDefinitions(),
			Stream:       a.stream,
		})
		if err != nil {
			return fmt.Errorf("model generation failed: %w", err)
		}

		calls := functionCalls(resp.Content)

		if len(calls) == 0 {
			if a.outputKey != "" {
				runCtx.SetState(a.outputKey, resp.Content.Text())
			}

			ev := core.NewEvent(runCtx.RunID, a.Name())
			ev.Content = &resp.Content
			return runCtx.EmitEvent(ev)
		}

		ev := core.NewEvent(runCtx.RunID, a.Name())
		ev.Content = &resp.Content
		if err := runCtx.EmitEvent(ev); err != nil {
			return err
		}
		contents = append(contents, resp.Content)

		toolContents, transfer, err := a.executeCalls(runCtx, calls)
		if err != nil {
			return err
		}
		contents = append(contents, toolContents...)

		if transfer != "" {
			return a.transferTo(runCtx, transfer)
		}
	}

	return fmt.Errorf("agent %s exceeded %d tool rounds without a final answer", a.Name(), a.maxToolRounds)
}

// executeCalls runs all requested tool calls, emits their response events,
// and returns the tool contents for the next model turn. A requested
// transfer short-circuits the loop.
func (a *ModelAgent) executeCalls(runCtx *core.RunContext, calls []core.FunctionCall) ([]core.Content, string, error) {
	var contents []core.Content
	transfer := ""

	for _, call := range calls {
		id := call.ID
		if id == "" {
			id = core.NewID()
		}

		toolCtx := core.NewToolContext(runCtx, id)
		result, err := a.registry.Dispatch(toolCtx, call.Name, call.Arguments)

		ev := core.NewFunctionResponseEvent(a.Name(), id, call.Name, tool.RenderResult(result), err)
		ev.RunID = runCtx.RunID
		ev.Actions = *toolCtx.Actions()
		if err := runCtx.EmitEvent(ev); err != nil {
			return nil, "", err
		}
		contents = append(contents, *ev.Content)

		if actions := toolCtx.Actions(); actions.TransferToAgent != nil && transfer == "" {
			transfer = *actions.TransferToAgent
		}
	}

	return contents, transfer, nil
}

func (a *ModelAgent) transferTo(runCtx *core.RunContext, name string) error {
	if !a.allowTransfer {
		return fmt.Errorf("agent %s does not allow transfers", a.Name())
	}

	target := findFromRoot(&agentWrapper{&a.BaseAgent}, name)
	if target == nil {
		return fmt.Errorf("transfer target %q not found in agent hierarchy", name)
	}

	runCtx.LogInfo("agent.transfer", "from", a.Name(), "to", name)

	return target.Run(runCtx)
}

// generate drives one model turn, forwarding partial chunks as streaming
// events and returning the final response.
func (a *ModelAgent) generate(runCtx *core.RunContext, req model.Request) (model.Response, error) {
	respCh, errCh := a.llm.Generate(runCtx.Context, req)

	var final model.Response
	for {
		select {
		case resp, ok := <-respCh:
			if !ok {
				return final, nil
			}
			if resp.Partial {
				if a.stream {
					partial := true
					ev := core.NewEvent(runCtx.RunID, a.Name())
					ev.Content = &resp.Content
					ev.Partial = &partial
					if err := runCtx.EmitEvent(ev); err != nil {
						return model.Response{}, err
					}
				}
				continue
			}
			final = resp
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

// buildContents assembles the conversation sent to the model: trimmed session
// history followed by the current user content.
func (a *ModelAgent) buildContents(runCtx *core.RunContext) []core.Content {
	var contents []core.Content

	if runCtx.Session != nil {
		history := runCtx.Session.GetConversationHistory()
		if a.maxHistory > 0 && len(history) > a.maxHistory {
			history = history[len(history)-a.maxHistory:]
		}
		for _, ev := range history {
			if ev.Content != nil {
				contents = append(contents, *ev.Content)
			}
		}
	}

	if len(runCtx.UserContent.Parts) > 0 {
		contents = append(contents, runCtx.UserContent)
	}

	return contents
}

func (a *ModelAgent) toolDefinitions() []model.ToolDefinition {
	tools := a.registry.Tools()
	if len(tools) == 0 {
		return nil
	}

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

func functionCalls(content core.Content) []core.FunctionCall {
	var calls []core.FunctionCall
	for _, p := range content.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}
