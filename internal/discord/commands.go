package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/arpan-dhatt/concourse/internal/api/command"
)

// commandDefinitions 斜杠命令集，每次启动整体覆盖注册
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        command.NameUpdate,
			Description: "Store your course codes",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "codes",
				Description: "Comma-separated course codes, e.g. 12349,56789",
				Required:    true,
			}},
		},
		{
			Name:        command.NameUser,
			Description: "Compare your schedule with another user",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "The user whose schedule to view",
				Required:    true,
			}},
		},
		{
			Name:        command.NameLookup,
			Description: "See who is taking a course",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "code",
				Description: "Course code",
				Required:    true,
			}},
		},
		{
			Name:        command.NameFind,
			Description: "List everyone attending your classes",
		},
		{
			Name:        command.NameDelete,
			Description: "Delete your stored course codes",
		},
		{
			Name:        command.NameHelp,
			Description: "How to use the bot",
		},
		{
			Name:        command.NamePrivacy,
			Description: "Hide or show your schedule to others",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "hidden",
				Description: "True to hide your schedule",
				Required:    true,
			}},
		},
		{
			Name:        command.NameSync,
			Description: "Update your course roles in this server",
		},
	}
}
