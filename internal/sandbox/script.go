package sandbox

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/enyst/smolpaws/pkg/config"
)

const (
	agentPackage = "@smolpaws/agent-sdk@0.8.0"
	agentDirName = "smolpaws-agent"
	scriptName   = "run-agent.mjs"

	// ResponseMarker separates agent chatter from the reply on stdout.
	// Everything after its last occurrence is the reply.
	ResponseMarker = "__SMOLPAWS_RESPONSE__"
)

// driverScript is the small program materialized inside the sandbox. It
// starts the agent runtime against the checked-out workspace, sends the
// prompt, and prints the final assistant text after the marker.
const driverScript = `import {
  LocalConversation,
  Workspace,
  SecretRegistry,
  reduceTextContent,
} from "@smolpaws/agent-sdk";

const prompt = process.env.SMOLPAWS_PROMPT ?? "";
const model = process.env.LLM_MODEL ?? "";
if (!model) {
  throw new Error("LLM model is required");
}

const settings = {
  llm: {
    provider: process.env.LLM_PROVIDER || undefined,
    model,
    baseUrl: process.env.LLM_BASE_URL || undefined,
  },
  agent: {
    enableSecurityAnalyzer: false,
    debug: false,
    summarizeToolCalls: false,
  },
  conversation: {
    maxIterations: 50,
    stuckDetection: true,
  },
  confirmation: {
    policy: "never",
    riskyThreshold: "HIGH",
    confirmUnknown: true,
  },
  secrets: {
    llmApiKey: process.env.LLM_API_KEY || undefined,
  },
};

const registry = new SecretRegistry();
const workspaceRoot = process.env.SMOLPAWS_WORKSPACE_ROOT || process.cwd();
const conversation = new LocalConversation({
  settings,
  workspace: Workspace({ kind: "local", root: workspaceRoot }),
  secrets: registry,
  includeDefaultTools: true,
  persistenceDir: process.env.SMOLPAWS_PERSISTENCE_DIR || undefined,
});

let response = "";
conversation.on("event", (event) => {
  if (event.kind === "MessageEvent" && event.llm_message?.role === "assistant") {
    const content = event.llm_message.content || [];
    response = reduceTextContent({ role: "assistant", content }).trim();
  }
});

await conversation.sendUserMessage(prompt);
console.log("` + ResponseMarker + `" + response);
`

type agentRunParams struct {
	Prompt         string
	WorkspaceRoot  string
	LLM            config.LLMConfig
	PersistenceDir string
}

// runAgent prepares the agent directory, lazily installs the agent runtime,
// writes the driver, and executes it with the prompt and LLM settings in
// the environment. The driver's stdout is scanned for the response marker.
func runAgent(ctx context.Context, sb Sandbox, params agentRunParams) (string, error) {
	agentDir := path.Join(sb.Root(), agentDirName)
	scriptPath := path.Join(agentDir, scriptName)

	if _, err := sb.Exec(ctx, fmt.Sprintf("mkdir -p %q", agentDir)); err != nil {
		return "", err
	}
	install := fmt.Sprintf(
		`if [ ! -d %q/node_modules ]; then cd %q && npm init -y >/dev/null 2>&1 && npm install %s >/dev/null 2>&1; fi`,
		agentDir, agentDir, agentPackage,
	)
	if _, err := sb.Exec(ctx, install); err != nil {
		return "", err
	}
	if _, err := sb.Exec(ctx, heredocWrite(scriptPath, driverScript)); err != nil {
		return "", err
	}

	run := fmt.Sprintf("cd %q && %s node %q", agentDir, driverEnv(params), scriptPath)
	output, err := sb.Exec(ctx, run)
	if err != nil {
		return "", err
	}
	return ExtractReply(output), nil
}

// driverEnv renders the driver's environment as shell variable assignments.
// Every value is quoted; prompts are attacker-influenced text.
func driverEnv(params agentRunParams) string {
	entries := []string{
		"SMOLPAWS_PROMPT=" + Quote(params.Prompt),
		"SMOLPAWS_WORKSPACE_ROOT=" + Quote(params.WorkspaceRoot),
		"LLM_MODEL=" + Quote(params.LLM.Model),
	}
	if params.LLM.Provider != "" {
		entries = append(entries, "LLM_PROVIDER="+Quote(params.LLM.Provider))
	}
	if params.LLM.BaseURL != "" {
		entries = append(entries, "LLM_BASE_URL="+Quote(params.LLM.BaseURL))
	}
	if params.LLM.APIKey != "" {
		entries = append(entries, "LLM_API_KEY="+Quote(params.LLM.APIKey))
	}
	if params.PersistenceDir != "" {
		entries = append(entries, "SMOLPAWS_PERSISTENCE_DIR="+Quote(params.PersistenceDir))
	}
	return strings.Join(entries, " ")
}

// ExtractReply returns the text after the marker's last occurrence,
// trimmed. Without a marker the whole trimmed output is a best-effort
// fallback.
func ExtractReply(output string) string {
	if idx := strings.LastIndex(output, ResponseMarker); idx >= 0 {
		return strings.TrimSpace(output[idx+len(ResponseMarker):])
	}
	return strings.TrimSpace(output)
}
