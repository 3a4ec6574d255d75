package bot

import (
	"fmt"
	"strings"
)

func getHelpMessage() string {
	var b strings.Builder
	b.WriteString("🔔 Subscription Commands:\n\n")
	for _, name := range CommandNames() {
		spec := commands[name]
		fmt.Fprintf(&b, "%s - %s\n", spec.usage, spec.description)
	}
	b.WriteString("\nYou can also react on the subscription message to subscribe, and remove the reaction to unsubscribe.")
	b.WriteString("\nGet detailed help for any command: help <command>")
	return b.String()
}

func getCommandHelp(name string) string {
	name = normalizeName(name)
	spec, ok := commands[name]
	if !ok {
		return fmt.Sprintf("❓ Unknown Command: %s\n\nUse help to list commands.", name)
	}
	return fmt.Sprintf("%s\n\nDescription: %s\nUsage: %s", name, spec.description, spec.usage)
}

func formatUsage(name string) string {
	return "Usage: " + commands[name].usage
}
