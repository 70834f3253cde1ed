package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matheus3301/huddle/internal/lock"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"github.com/matheus3301/huddle/internal/workspace"
)

func (a *cli) status(ctx context.Context) {
	resp, err := a.c.Workspace.GetStatus(ctx, &rpcv1.GetStatusRequest{})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("Workspace:     %s\n", resp.Workspace)
	fmt.Printf("Uptime:        %dms\n", resp.UptimeMs)
	fmt.Printf("Conversations: %d\n", resp.ConversationCount)
	fmt.Printf("Messages:      %d\n", resp.MessageCount)
	fmt.Printf("Subscribers:   %d\n", resp.Subscribers)
	if owner, ok := lock.Holder(workspace.LockPath(a.workspace)); ok {
		fmt.Printf("Daemon:        pid %d since %s\n", owner.PID, owner.Since.Local().Format(time.DateTime))
	}
}

func (a *cli) conversations(ctx context.Context) {
	resp, err := a.c.Conversation.ListConversations(ctx, &rpcv1.ListConversationsRequest{UserId: a.requireUser()})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}
	if len(resp.Conversations) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, c := range resp.Conversations {
		fmt.Printf("%-36s  %-7s  %-24s  %s  %s\n", c.Id, c.Kind, c.Name, formatTime(c.LastMessageAtUnixMs), c.LastMessagePreview)
	}
}

func (a *cli) messages(ctx context.Context, args []string) {
	needArgs(args, 1, "messages <conversation>")
	resp, err := a.c.Message.ListMessages(ctx, &rpcv1.ListMessagesRequest{ConversationId: args[0]})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.SenderId)
	}
	names := a.senderNames(ctx, ids)
	for _, m := range resp.Messages {
		fmt.Printf("[%s] %s: %s\n", formatTime(m.CreatedAtUnixMs), names[m.SenderId], m.Content)
	}
}

// senderNames resolves display names in one call. Unknown senders show as "Unknown".
func (a *cli) senderNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = "Unknown"
	}
	if len(ids) == 0 {
		return names
	}
	resp, err := a.c.Profile.ResolveIdentities(ctx, &rpcv1.ResolveIdentitiesRequest{UserIds: ids})
	if err != nil {
		return names
	}
	for _, ident := range resp.Identities {
		names[ident.UserId] = ident.DisplayName
	}
	return names
}

func (a *cli) send(ctx context.Context, args []string) {
	needArgs(args, 2, "send <conversation> <text>")
	resp, err := a.c.Message.SendMessage(ctx, &rpcv1.SendMessageRequest{
		ConversationId: args[0],
		SenderId:       a.requireUser(),
		Content:        strings.Join(args[1:], " "),
	})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("sent %s\n", resp.Message.Id)
}

func (a *cli) dm(ctx context.Context, args []string) {
	needArgs(args, 1, "dm <user>")
	resp, err := a.c.Conversation.CreateDirect(ctx, &rpcv1.CreateDirectRequest{UserId: a.requireUser(), PeerId: args[0]})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}
	verb := "existing"
	if resp.Created {
		verb = "created"
	}
	fmt.Printf("%s (%s)\n", resp.Conversation.Id, verb)
}

func (a *cli) channel(ctx context.Context, args []string) {
	needArgs(args, 1, "channel <create|clone> ...")
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("channel create", flag.ExitOnError)
		desc := fs.String("desc", "", "channel description")
		_ = fs.Parse(args[1:])
		needArgs(fs.Args(), 1, "channel create [--desc d] <name>")
		resp, err := a.c.Conversation.CreateChannel(ctx, &rpcv1.CreateChannelRequest{
			OwnerId:     a.requireUser(),
			Name:        strings.Join(fs.Args(), " "),
			Description: *desc,
		})
		check(err)
		a.printChannel(resp)
	case "clone":
		needArgs(args, 2, "channel clone <channel>")
		resp, err := a.c.Conversation.CloneChannel(ctx, &rpcv1.CloneChannelRequest{UserId: a.requireUser(), ChannelId: args[1]})
		check(err)
		a.printChannel(resp)
	default:
		fatalf("unknown channel subcommand: %s", args[0])
	}
}

func (a *cli) printChannel(resp *rpcv1.ChannelResponse) {
	if a.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("%s  %s\n", resp.Conversation.Id, resp.Conversation.Name)
}

func (a *cli) members(ctx context.Context, args []string) {
	needArgs(args, 1, "members <list|add|remove> ...")
	switch args[0] {
	case "list":
		needArgs(args, 2, "members list <conversation>")
		resp, err := a.c.Conversation.ListMembers(ctx, &rpcv1.ListMembersRequest{ConversationId: args[1]})
		check(err)
		if a.json {
			outputJSON(resp)
			return
		}
		for _, m := range resp.Members {
			fmt.Printf("%-20s  %-6s  %s <%s>\n", m.UserId, m.Role, m.Name, m.Email)
		}
	case "add":
		fs := flag.NewFlagSet("members add", flag.ExitOnError)
		role := fs.String("role", "", "member or admin (default member)")
		_ = fs.Parse(args[1:])
		needArgs(fs.Args(), 2, "members add [--role r] <conversation> <user>")
		_, err := a.c.Conversation.AddMember(ctx, &rpcv1.AddMemberRequest{
			ActorId:        a.requireUser(),
			ConversationId: fs.Arg(0),
			UserId:         fs.Arg(1),
			Role:           *role,
		})
		check(err)
		fmt.Println("ok")
	case "remove":
		needArgs(args, 3, "members remove <conversation> <user>")
		_, err := a.c.Conversation.RemoveMember(ctx, &rpcv1.RemoveMemberRequest{
			ActorId:        a.requireUser(),
			ConversationId: args[1],
			UserId:         args[2],
		})
		check(err)
		fmt.Println("ok")
	default:
		fatalf("unknown members subcommand: %s", args[0])
	}
}

func (a *cli) users(ctx context.Context, args []string) {
	resp, err := a.c.Profile.ListProfiles(ctx, &rpcv1.ListProfilesRequest{
		ExcludeId: a.user,
		Query:     strings.Join(args, " "),
	})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}
	if len(resp.Profiles) == 0 {
		fmt.Println("No users found.")
		return
	}
	for _, p := range resp.Profiles {
		fmt.Printf("%-20s  %-24s  %-28s  %s\n", p.Id, p.FullName, p.Email, p.Department)
	}
}

func (a *cli) profile(ctx context.Context, args []string) {
	if len(args) == 0 || args[0] != "set" {
		fmt.Fprintln(os.Stderr, "usage: huddlectl profile set [--name n] [--email e] [--avatar url] [--department d] [--phone p] [--bio b] <id>")
		os.Exit(1)
	}
	fs := flag.NewFlagSet("profile set", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	avatar := fs.String("avatar", "", "avatar URL")
	department := fs.String("department", "", "department")
	phone := fs.String("phone", "", "phone number")
	bio := fs.String("bio", "", "short bio")
	_ = fs.Parse(args[1:])

	id := fs.Arg(0)
	if id == "" {
		id = a.requireUser()
	}
	resp, err := a.c.Profile.UpsertProfile(ctx, &rpcv1.UpsertProfileRequest{Profile: &rpcv1.Profile{
		Id:         id,
		FullName:   *name,
		Email:      *email,
		AvatarUrl:  *avatar,
		Department: *department,
		Phone:      *phone,
		Bio:        *bio,
	}})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("%s  %s <%s>\n", resp.Profile.Id, resp.Profile.FullName, resp.Profile.Email)
}

func (a *cli) search(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	in := fs.String("in", "", "limit to one conversation")
	_ = fs.Parse(args)
	needArgs(fs.Args(), 1, "search [--in conversation] <query>")

	resp, err := a.c.Message.SearchMessages(ctx, &rpcv1.SearchMessagesRequest{
		UserId:         a.requireUser(),
		Query:          strings.Join(fs.Args(), " "),
		ConversationId: *in,
	})
	check(err)
	if a.json {
		outputJSON(resp)
		return
	}
	if len(resp.Results) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, r := range resp.Results {
		fmt.Printf("%s  [%s] %s\n", r.Message.ConversationId, formatTime(r.Message.CreatedAtUnixMs), r.Snippet)
	}
}
