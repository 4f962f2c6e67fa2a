package service

import (
	"errors"
	"testing"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/constants"
)

func TestCaptchaDisabledPassesThrough(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Provider: constants.CaptchaProviderNone, Scenes: config.CaptchaSceneConfig{Login: true}})
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled captcha should pass: %v", err)
	}
	if _, err := svc.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("challenge without image provider should fail, got %v", err)
	}
}

func TestCaptchaImageVerify(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderImage,
		Scenes:   config.CaptchaSceneConfig{Login: true},
	})
	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate challenge failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("challenge should carry id and image")
	}

	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("missing code want ErrCaptchaRequired got %v", err)
	}

	answer := svc.imageStore.Get(challenge.CaptchaID, false)
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: "wrong!"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("wrong code want ErrCaptchaInvalid got %v", err)
	}
	// 校验失败后验证码已被清除
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("consumed challenge should not verify again, got %v", err)
	}

	second, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate second challenge failed: %v", err)
	}
	answer = svc.imageStore.Get(second.CaptchaID, false)
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{CaptchaID: second.CaptchaID, CaptchaCode: answer}); err != nil {
		t.Fatalf("correct code should verify: %v", err)
	}
}

func TestNormalizeCaptchaSettingDefaults(t *testing.T) {
	setting := NormalizeCaptchaSetting(CaptchaSetting{Provider: "turnstile", LoginEnabled: true})
	if setting.Provider != constants.CaptchaProviderNone {
		t.Fatalf("unknown provider should fall back to none, got %s", setting.Provider)
	}
	if setting.LoginEnabled {
		t.Fatalf("login scene should be off without a provider")
	}
	if setting.Image.Length != 5 || setting.Image.ExpireSeconds != 300 {
		t.Fatalf("unexpected image defaults: %+v", setting.Image)
	}
}
