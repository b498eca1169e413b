package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
)

type notifyOptions struct {
	username string
	title    string
	message  string
	kind     string
	link     string
}

func (cli *commandLine) notify(opts notifyOptions) error {
	ctx := context.Background()
	usr, err := cli.svc.Users.GetByUsernameOrEmail(ctx, opts.username)
	if err != nil {
		return err
	}
	n, err := cli.svc.Notifications.Send(ctx, notification.NewNotification{
		UserID:  usr.ID,
		Type:    notification.Type(opts.kind),
		Title:   opts.title,
		Message: opts.message,
		Link:    opts.link,
	})
	if err != nil {
		return err
	}
	fmt.Printf("notified %q (%s)\n", usr.Username, n.ID)
	return nil
}

type newsOptions struct {
	title     string
	text      string
	tag       string
	cover     string // file path
	broadcast bool
}

func (cli *commandLine) addNews(opts newsOptions) error {
	cover, err := os.Open(opts.cover)
	if err != nil {
		return errors.Wrap(err, "opening cover")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer cover.Close()

	n, err := cli.svc.News.Create(context.Background(), news.NewNews{
		Title:     opts.title,
		Text:      opts.text,
		Tag:       opts.tag,
		Cover:     cover,
		Broadcast: opts.broadcast,
	})
	if err != nil {
		return err
	}
	fmt.Printf("published %q (%s)\n", n.Title, n.CoverURL)
	return nil
}
