/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jinr.ru/greenlab/go-scope/pkg/adc"
	"jinr.ru/greenlab/go-scope/pkg/config"
	"jinr.ru/greenlab/go-scope/pkg/log"
	"jinr.ru/greenlab/go-scope/pkg/source"
	"jinr.ru/greenlab/go-scope/pkg/srv/scope"
)

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// StartScopeServer runs the scope server until it fails or gets a signal
func StartScopeServer(cfg *config.Config) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := scope.NewScopeServer(ctx, cfg)
	if err != nil {
		return err
	}
	err = s.Run()
	if ctx.Err() != nil {
		log.Info("Scope server stopped")
		return nil
	}
	return err
}

// StartSimulator sends synthetic revolutions to the scope server
func StartSimulator(cfg *config.Config, waves ...source.Wave) error {
	ctx, cancel := signalContext()
	defer cancel()

	gen, err := source.NewGenerator(
		adc.NewConverter(cfg.Resolution, cfg.VRef),
		cfg.SampleRate,
		cfg.RawSamples,
		waves...,
	)
	if err != nil {
		return err
	}
	sender, err := source.NewSender(ctx, cfg.SourceAddress(), gen)
	if err != nil {
		return err
	}
	err = sender.Run()
	if ctx.Err() != nil {
		log.Info("Simulator stopped")
		return nil
	}
	return err
}
