package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/wfunc/ggst-notebot/internal/errors"
	"github.com/wfunc/ggst-notebot/internal/models"
	"github.com/wfunc/ggst-notebot/internal/service"
)

func parsePeriod(opts Options, def models.Period) (models.Period, error) {
	period, err := models.ParsePeriod(opts.String("period"), def)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidPeriod)
	}
	return period, nil
}

// setMain /gs
func (h *Handler) setMain(ctx context.Context, req *Request) (*Response, error) {
	ref, err := h.services.User.SetMainCharacter(ctx, req.UserID, req.Options.String("character"))
	if err != nil {
		return nil, err
	}
	return textResponse(fmt.Sprintf("✅ メインキャラクターを「%s」に設定しました！", ref.Name())), nil
}

// note /gn
func (h *Handler) note(ctx context.Context, req *Request) (*Response, error) {
	result, err := h.services.Match.Record(ctx, &service.RecordMatchRequest{
		DiscordID:   req.UserID,
		Opponent:    req.Options.String("opponent"),
		MyCharacter: req.Options.String("mycharacter"),
		Result:      req.Options.String("result"),
		Reason:      req.Options.String("defeat_reason"),
		Priority:    req.Options.String("priority"),
		Note:        req.Options.String("note"),
		MatchDate:   h.now(),
	})
	if err != nil {
		return nil, err
	}
	return textResponse(formatRecorded(result)), nil
}

// history /gh
func (h *Handler) history(ctx context.Context, req *Request) (*Response, error) {
	period, err := parsePeriod(req.Options, models.Period1Day)
	if err != nil {
		return nil, err
	}
	limit := h.cfg.HistoryLimit
	if v, ok := req.Options.Int("limit"); ok && v > 0 {
		limit = v
	}
	if limit > h.cfg.HistoryMaxLimit {
		limit = h.cfg.HistoryMaxLimit
	}

	historyReq := &service.HistoryRequest{
		DiscordID:   req.UserID,
		Opponent:    req.Options.String("opponent"),
		MyCharacter: req.Options.String("mycharacter"),
		Period:      period,
		Limit:       limit,
	}
	result, err := h.services.Match.History(ctx, historyReq)
	if err != nil {
		return nil, err
	}
	if len(result.Matches) == 0 {
		return textResponse(historyEmptyMessage(period, historyReq.Opponent, historyReq.MyCharacter)), nil
	}
	return embedResponse(formatHistory(req.Username, historyReq, result, h.loc)), nil
}

// match /gm
func (h *Handler) match(ctx context.Context, req *Request) (*Response, error) {
	period, err := parsePeriod(req.Options, models.PeriodAll)
	if err != nil {
		return nil, err
	}
	summary, err := h.services.Match.Summary(ctx, &service.SummaryRequest{
		DiscordID:   req.UserID,
		Opponent:    req.Options.String("opponent"),
		MyCharacter: req.Options.String("mycharacter"),
		Period:      period,
	})
	if err != nil {
		return nil, err
	}
	return embedResponse(formatSummary(summary, h.loc)), nil
}

// exportFileName 导出文件名，去掉文件名中不能使用的字符
func exportFileName(username string, unixMilli int64) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>| `, r) {
			return '_'
		}
		return r
	}, username)
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("ggst-data-%s-%d.md", name, unixMilli)
}

// export /ge
func (h *Handler) export(ctx context.Context, req *Request) (*Response, error) {
	period, err := parsePeriod(req.Options, models.Period1Day)
	if err != nil {
		return nil, err
	}
	now := h.now().In(h.loc)
	markdown, err := h.services.Export.Markdown(ctx, &service.ExportRequest{
		DiscordID: req.UserID,
		Username:  req.Username,
		Opponent:  req.Options.String("opponent"),
		Period:    period,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	return &Response{
		Content: "📄 データをエクスポートしました。このファイルをNotebookLMにアップロードして分析してください。",
		Files: []*discordgo.File{{
			Name:        exportFileName(req.Username, now.UnixMilli()),
			ContentType: "text/markdown; charset=utf-8",
			Reader:      strings.NewReader(markdown),
		}},
	}, nil
}
