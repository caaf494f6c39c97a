package channel

import (
	"github.com/kiosk404/scrivener/internal/scriptorium/service/channel/domain/entity"
)

// BuiltinChannels returns the channel catalog shipped with the server.
// The web channel is the default and carries no output constraints.
func BuiltinChannels() []*entity.Channel {
	return []*entity.Channel{
		{
			ID:          "web",
			Name:        "Web Interface",
			Description: "Standard web-based chat interface with HTML/CSS/JS support",
			Capabilities: map[string]entity.Capability{
				"rich_text":   {Name: "Rich Text", Description: "HTML formatting support", Supported: true},
				"file_upload": {Name: "File Upload", Description: "File attachment support", Supported: true},
				"real_time":   {Name: "Real-time Updates", Description: "Streaming responses", Supported: true},
				"custom_ui":   {Name: "Custom UI", Description: "Custom HTML components", Supported: true},
			},
			ArtifactTypes: []string{"html", "css", "javascript", "json"},
			Metadata:      map[string]string{"color": "#007bff"},
		},
		{
			ID:          "slack",
			Name:        "Slack",
			Description: "Slack workspace integration with Block Kit support",
			Capabilities: map[string]entity.Capability{
				"blocks":         {Name: "Block Kit", Description: "Slack Block Kit UI", Supported: true},
				"threads":        {Name: "Threads", Description: "Threaded conversations", Supported: true},
				"reactions":      {Name: "Reactions", Description: "Emoji reactions", Supported: true},
				"slash_commands": {Name: "Slash Commands", Description: "Slack slash commands", Supported: true},
			},
			ArtifactTypes: []string{"blocks", "attachments", "modals"},
			Constraints:   entity.Constraints{MaxMessageLength: 4000},
			Metadata:      map[string]string{"color": "#4A154B"},
		},
		{
			ID:          "teams",
			Name:        "Microsoft Teams",
			Description: "Teams integration with Adaptive Cards and bot framework",
			Capabilities: map[string]entity.Capability{
				"adaptive_cards": {Name: "Adaptive Cards", Description: "Teams Adaptive Cards", Supported: true},
				"task_modules":   {Name: "Task Modules", Description: "Teams task modules", Supported: true},
				"bot_framework":  {Name: "Bot Framework", Description: "Microsoft Bot Framework", Supported: true},
				"tabs":           {Name: "Tabs", Description: "Teams tabs integration", Supported: true},
			},
			ArtifactTypes: []string{"adaptive_cards", "task_modules", "bot_activities"},
			Metadata:      map[string]string{"color": "#6264A7"},
		},
		{
			ID:          "discord",
			Name:        "Discord",
			Description: "Discord bot integration with embeds and slash commands",
			Capabilities: map[string]entity.Capability{
				"embeds":         {Name: "Embeds", Description: "Discord rich embeds", Supported: true},
				"slash_commands": {Name: "Slash Commands", Description: "Discord slash commands", Supported: true},
				"reactions":      {Name: "Reactions", Description: "Emoji reactions", Supported: true},
				"voice":          {Name: "Voice", Description: "Voice channel support", Supported: false},
			},
			ArtifactTypes: []string{"embeds", "slash_commands", "components"},
			Constraints:   entity.Constraints{MaxMessageLength: 2000},
			Metadata:      map[string]string{"color": "#5865F2"},
		},
		{
			ID:          "twitch",
			Name:        "Twitch",
			Description: "Twitch chat integration with streamer tools",
			Capabilities: map[string]entity.Capability{
				"chat_commands": {Name: "Chat Commands", Description: "Twitch chat commands", Supported: true},
				"extensions":    {Name: "Extensions", Description: "Twitch extensions", Supported: false},
				"moderation":    {Name: "Moderation", Description: "Chat moderation tools", Supported: false},
			},
			ArtifactTypes: []string{"chat_commands"},
			Constraints:   entity.Constraints{MaxMessageLength: 500},
			Metadata:      map[string]string{"color": "#9146FF"},
		},
		{
			ID:          "whatsapp",
			Name:        "WhatsApp",
			Description: "WhatsApp Business integration",
			Capabilities: map[string]entity.Capability{
				"templates": {Name: "Message Templates", Description: "Pre-approved message templates", Supported: true},
				"media":     {Name: "Media", Description: "Image and document attachments", Supported: true},
				"buttons":   {Name: "Buttons", Description: "Interactive reply buttons", Supported: true},
			},
			ArtifactTypes: []string{"templates", "media_messages"},
			Constraints:   entity.Constraints{MaxMessageLength: 4096},
			Metadata:      map[string]string{"color": "#25D366"},
		},
		{
			ID:          "apple-business-chat",
			Name:        "Apple Business Chat",
			Description: "Apple Messages for Business integration",
			Capabilities: map[string]entity.Capability{
				"rich_links":   {Name: "Rich Links", Description: "Rich link previews", Supported: true},
				"list_picker":  {Name: "List Picker", Description: "Interactive list selection", Supported: true},
				"time_picker":  {Name: "Time Picker", Description: "Appointment scheduling", Supported: true},
				"apple_pay":    {Name: "Apple Pay", Description: "Payment requests", Supported: false},
				"custom_inter": {Name: "Custom Interactive", Description: "Custom iMessage apps", Supported: false},
			},
			ArtifactTypes: []string{"rich_links", "list_pickers", "time_pickers"},
			Metadata:      map[string]string{"color": "#000000"},
		},
	}
}
