package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsYouTubeURL reports whether the string looks like a YouTube link.
func IsYouTubeURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}

// ExtractYouTubeID pulls the video id out of the common YouTube URL
// shapes (watch, youtu.be, embed, /v/).
func ExtractYouTubeID(youtubeURL string) (string, error) {
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.TrimPrefix(u.Path, "/")
		if idx := strings.Index(id, "?"); idx != -1 {
			id = id[:idx]
		}
		if id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no video ID found in youtu.be URL")
	}

	if strings.Contains(u.Host, "youtube.com") {
		if strings.HasPrefix(u.Path, "/watch") {
			if videoID := u.Query().Get("v"); videoID != "" {
				return videoID, nil
			}
		}
		for _, prefix := range []string{"/embed/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.TrimPrefix(u.Path, prefix); id != "" {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("unable to extract video ID from URL: %s", youtubeURL)
}

type ytdlpInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Uploader string `json:"uploader"`
	Channel  string `json:"channel"`
}

// DownloadedTrack describes an audio file fetched from YouTube.
type DownloadedTrack struct {
	Path    string
	Title   string
	Artist  string
	VideoID string
}

// DownloadYouTubeAudio fetches a video's audio as MP3 into destDir
// using the yt-dlp binary, which must be on PATH.
func DownloadYouTubeAudio(ctx context.Context, youtubeURL, destDir string) (DownloadedTrack, error) {
	id, err := ExtractYouTubeID(youtubeURL)
	if err != nil {
		return DownloadedTrack{}, err
	}
	if err := EnsureDir(destDir); err != nil {
		return DownloadedTrack{}, fmt.Errorf("creating download dir: %w", err)
	}

	info, err := probeYouTube(ctx, youtubeURL)
	if err != nil {
		return DownloadedTrack{}, err
	}

	outPath := filepath.Join(destDir, id+".mp3")
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"-x", "--audio-format", "mp3",
		"--no-warnings", "--no-playlist",
		"-o", filepath.Join(destDir, id+".%(ext)s"),
		youtubeURL,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return DownloadedTrack{}, fmt.Errorf("yt-dlp download failed: %w\nstderr:\n%s", err, stderr.String())
	}

	return DownloadedTrack{
		Path:    outPath,
		Title:   info.Title,
		Artist:  pickArtist(info),
		VideoID: id,
	}, nil
}

func probeYouTube(ctx context.Context, youtubeURL string) (ytdlpInfo, error) {
	cmd := exec.CommandContext(ctx, "yt-dlp", "-J", "--no-warnings", "--no-playlist", youtubeURL)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return ytdlpInfo{}, fmt.Errorf("yt-dlp probe failed: %w\nstderr:\n%s", err, stderr.String())
	}
	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return ytdlpInfo{}, fmt.Errorf("failed parsing yt-dlp JSON: %w", err)
	}
	if strings.TrimSpace(info.Title) == "" {
		return ytdlpInfo{}, fmt.Errorf("missing title in yt-dlp output")
	}
	return info, nil
}

func pickArtist(info ytdlpInfo) string {
	if strings.TrimSpace(info.Artist) != "" {
		return info.Artist
	}
	if strings.TrimSpace(info.Channel) != "" {
		return info.Channel
	}
	if strings.TrimSpace(info.Uploader) != "" {
		return info.Uploader
	}
	return "Unknown Artist"
}
