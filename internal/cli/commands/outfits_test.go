package commands

import (
	"strings"
	"testing"

	"DressCode/internal/cli/model"
	"DressCode/internal/cli/viewstate"
)

func TestOutfits_FiltersAndProfileGender(t *testing.T) {
	cfg := registered(t)

	out := mustRun(t, outfitsCmd{}, cfg)
	if !strings.Contains(out, "Всего: 8") {
		t.Fatalf("full catalog expected: %s", out)
	}
	out = mustRun(t, outfitsCmd{}, cfg, "--style", "约会")
	if !strings.Contains(out, "法式连衣裙") || !strings.Contains(out, "Всего: 2") {
		t.Fatalf("style filter: %s", out)
	}

	mustRun(t, profileSetCmd{}, cfg, "--gender", "MALE")
	out = mustRun(t, outfitsCmd{}, cfg)
	if strings.Contains(out, "法式连衣裙") || !strings.Contains(out, "Всего: 6") {
		t.Fatalf("profile gender should filter: %s", out)
	}
	out = mustRun(t, outfitsCmd{}, cfg, "--all")
	if !strings.Contains(out, "Всего: 8") {
		t.Fatalf("--all ignores profile gender: %s", out)
	}
	out = mustRun(t, outfitsCmd{}, cfg, "--all", "--q", "不存在的")
	if !strings.Contains(out, "Ничего не найдено") {
		t.Fatalf("empty result expected: %s", out)
	}
}

func TestOutfitFav_Favorites(t *testing.T) {
	cfg := registered(t)
	out := mustRun(t, favoritesCmd{}, cfg)
	if !strings.Contains(out, "Ничего не найдено") {
		t.Fatalf("no favorites yet: %s", out)
	}
	out = mustRun(t, outfitFavCmd{}, cfg, "3")
	if !strings.Contains(out, "3 favorite: true") {
		t.Fatalf("fav toggle: %s", out)
	}
	out = mustRun(t, favoritesCmd{}, cfg)
	if !strings.Contains(out, "Всего: 1") {
		t.Fatalf("one favorite expected: %s", out)
	}
	if _, err := run(t, outfitFavCmd{}, cfg, "999"); err == nil {
		t.Fatalf("unknown outfit must fail")
	}
}

func TestOutfitsRetag(t *testing.T) {
	cfg := registered(t)
	out := mustRun(t, outfitsRetagCmd{}, cfg, "--overwrite")
	if !strings.Contains(out, "Retagged: 8") {
		t.Fatalf("retag: %s", out)
	}
}

func TestBrowse_FollowsQueries(t *testing.T) {
	cfg := registered(t)
	old := In
	In = strings.NewReader("风衣\n")
	defer func() { In = old }()

	out := mustRun(t, browseCmd{}, cfg)
	// последний напечатанный список относится к последнему запросу
	parts := strings.Split(out, "---")
	last := parts[len(parts)-1]
	if !strings.Contains(last, "风衣 + 针织衫") || !strings.Contains(last, "Всего: 1") {
		t.Fatalf("last rows should match the last query: %s", out)
	}
}

func TestParseQueryLine(t *testing.T) {
	base := viewstate.OutfitQuery{OutfitFilter: model.OutfitFilter{Season: "春"}, AllGenders: true}
	q := parseQueryLine("style:休闲 gender:female 牛仔 裤", base)
	if q.Style != "休闲" || q.Gender != "FEMALE" || q.Season != "春" || q.Query != "牛仔 裤" || !q.AllGenders {
		t.Fatalf("unexpected query: %+v", q)
	}
}
