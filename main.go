package main

import (
	"context"
	"embed"
	"runtime"

	"sweepboard/app"
	"sweepboard/app/settings"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	// Create an instance of the app structure
	appInstance := app.NewApp()
	settingsService := settings.NewSettingsService()
	// Inject cache manager (app) so settings service can clear caches when needed
	settingsService.SetCacheManager(appInstance)

	AppMenu := menu.NewMenu()
	if runtime.GOOS == "darwin" {
		AppMenu.Append(menu.AppMenu())
	}

	FileMenu := AppMenu.AddSubmenu("File")
	FileMenu.AddText("Refresh Results", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:refresh")
		}
	})
	FileMenu.AddSeparator()
	FileMenu.AddText("Copy Selected Rows", keys.CmdOrCtrl("c"), func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:copySelected")
		}
	})
	FileMenu.AddText("Export to Excel", keys.CmdOrCtrl("e"), func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:export")
		}
	})
	FileMenu.AddSeparator()
	FileMenu.AddText("Settings", keys.CmdOrCtrl(","), func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:settings")
		}
	})

	ViewMenu := AppMenu.AddSubmenu("View")
	filtersMenuItem := ViewMenu.AddText("Toggle Filters", keys.CmdOrCtrl("f"), nil)
	filtersMenuItem.OnClick(func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:toggleFilters")
		}
	})
	columnsMenuItem := ViewMenu.AddText("Toggle Columns Panel", keys.CmdOrCtrl("k"), nil)
	columnsMenuItem.OnClick(func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:toggleColumns")
		}
	})
	completenessMenuItem := ViewMenu.AddText("Toggle Completeness Check", keys.CmdOrCtrl("m"), nil)
	completenessMenuItem.OnClick(func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:toggleCompleteness")
		}
	})
	ViewMenu.AddSeparator()
	cacheIndicatorMenuItem := ViewMenu.AddText("Toggle Cache Indicator", nil, nil)
	cacheIndicatorMenuItem.OnClick(func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:toggleCacheIndicator")
		}
	})

	HelpMenu := AppMenu.AddSubmenu("Help")
	HelpMenu.AddText("About", nil, func(_ *menu.CallbackData) {
		if appInstance != nil {
			wruntime.EventsEmit(appInstance.Ctx(), "menu:about")
		}
	})

	// Saved window size or defaults
	currentSettings := settings.GetEffectiveSettings()
	width, height := currentSettings.WindowWidth, currentSettings.WindowHeight
	if width < 400 || height < 300 {
		width, height = 1280, 800
	}

	// Create application with options
	err := wails.Run(&options.App{
		Title:     "Sweepboard",
		Width:     width,
		Height:    height,
		Menu:      AppMenu,
		MinWidth:  400,
		MinHeight: 300,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			appInstance.Startup(ctx)
			settingsService.Startup(ctx)
			// Ensure instance ID is generated on first startup
			if err := settingsService.EnsureInstanceID(); err != nil {
				println("Warning: Failed to generate instance ID:", err.Error())
			}
		},
		OnShutdown: func(ctx context.Context) {
			appInstance.Shutdown(ctx)
		},
		Bind: []interface{}{
			appInstance,
			settingsService,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
